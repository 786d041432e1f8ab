// Package model defines domain entities for the application.
package model

import "time"

// Category is the house type of a listing.
type Category string

const (
	CategoryBedsitter  Category = "Bedsitter"
	CategoryOneBedroom Category = "1 Bedroom"
	CategoryTwoBedroom Category = "2 Bedroom"
)

// Categories returns the accepted categories in display order.
func Categories() []Category {
	return []Category{CategoryBedsitter, CategoryOneBedroom, CategoryTwoBedroom}
}

// IsValid checks if the category is one of the fixed enumeration.
func (c Category) IsValid() bool {
	switch c {
	case CategoryBedsitter, CategoryOneBedroom, CategoryTwoBedroom:
		return true
	}
	return false
}

// Listing is a published property record owned by exactly one user.
type Listing struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Category    Category  `json:"category"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	ImageRef    *string   `json:"image_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether userID owns the listing.
func (l *Listing) IsOwnedBy(userID int64) bool {
	return l.OwnerID == userID
}

// HasImage returns true if an uploaded image is attached.
func (l *Listing) HasImage() bool {
	return l.ImageRef != nil && *l.ImageRef != ""
}
