package dto

import (
	"time"

	"github.com/keja/keja/internal/model"
)

// UploadsPath is the URL prefix under which stored images are served.
const UploadsPath = "/uploads/"

// CreateListingRequest represents the JSON body for creating a listing.
// Multipart requests carry the same names as form fields.
type CreateListingRequest struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// UpdateListingRequest represents a partial update. Omitted fields keep
// their stored values.
type UpdateListingRequest struct {
	Title          *string  `json:"title,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Price          *string  `json:"price,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Location       *string  `json:"location,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	ClearLatitude  bool     `json:"clear_latitude,omitempty"`
	ClearLongitude bool     `json:"clear_longitude,omitempty"`
	RemoveImage    bool     `json:"remove_image,omitempty"`
}

// ListingResponse represents a listing in API responses.
type ListingResponse struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListingListResponse wraps a list of listings.
type ListingListResponse struct {
	Data []ListingResponse `json:"data"`
}

// UserListingsResponse is the public listing page of one account.
type UserListingsResponse struct {
	User UserResponse      `json:"user"`
	Data []ListingResponse `json:"data"`
}

// ToListingResponse converts a Listing model to ListingResponse DTO.
func ToListingResponse(listing *model.Listing) ListingResponse {
	resp := ListingResponse{
		ID:          listing.ID,
		OwnerID:     listing.OwnerID,
		Title:       listing.Title,
		Category:    string(listing.Category),
		Price:       listing.Price,
		Description: listing.Description,
		Location:    listing.Location,
		Latitude:    listing.Latitude,
		Longitude:   listing.Longitude,
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
	if listing.HasImage() {
		url := UploadsPath + *listing.ImageRef
		resp.ImageURL = &url
	}
	return resp
}

// ToListingResponses converts listings, always returning a non-nil slice.
func ToListingResponses(listings []*model.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, ToListingResponse(l))
	}
	return out
}
