package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keja/keja/internal/metrics"
	"github.com/keja/keja/internal/model"
	"github.com/keja/keja/internal/repository"
)

// ListingService handles listing business logic.
type ListingService struct {
	listings ListingStore
	users    UserStore
	metrics  metrics.Recorder
}

// NewListingService creates a new ListingService.
func NewListingService(listings ListingStore, users UserStore, recorder metrics.Recorder) *ListingService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ListingService{
		listings: listings,
		users:    users,
		metrics:  recorder,
	}
}

// CreateListingInput defines input for creating a listing.
type CreateListingInput struct {
	Title       string
	Category    model.Category
	Price       string
	Description string
	Location    string
	Latitude    *float64
	Longitude   *float64
	ImageRef    *string
}

// Create validates input and persists a listing owned by ownerID.
func (s *ListingService) Create(ctx context.Context, ownerID int64, input CreateListingInput) (*model.Listing, error) {
	if ownerID <= 0 {
		return nil, ErrUnauthorized
	}

	v := NewValidationError()
	validateRequired(v, "title", input.Title, maxTitleLength)
	validateCategory(v, "category", input.Category)
	validateRequired(v, "price", input.Price, maxPriceLength)
	validateRequired(v, "description", input.Description, 0)
	validateRequired(v, "location", input.Location, maxLocationLength)
	validateLatitude(v, input.Latitude)
	validateLongitude(v, input.Longitude)
	validateImageRef(v, input.ImageRef)
	if err := v.Err(); err != nil {
		return nil, err
	}

	listing := &model.Listing{
		OwnerID:     ownerID,
		Title:       input.Title,
		Category:    input.Category,
		Price:       input.Price,
		Description: input.Description,
		Location:    input.Location,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		ImageRef:    emptyToNil(input.ImageRef),
	}

	if err := s.listings.CreateListing(ctx, listing); err != nil {
		if errors.Is(err, repository.ErrOwnerMissing) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.metrics.IncListingCreated()

	return listing, nil
}

// Get retrieves a listing by ID.
func (s *ListingService) Get(ctx context.Context, id int64) (*model.Listing, error) {
	listing, err := s.listings.GetListingByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

// ListByOwner returns every listing of ownerID in insertion order.
func (s *ListingService) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Listing, error) {
	return s.listings.ListListingsByOwner(ctx, ownerID)
}

// ListByOwnerHandle resolves handle and returns that user's listings.
func (s *ListingService) ListByOwnerHandle(ctx context.Context, handle string) (*model.User, []*model.Listing, error) {
	user, err := s.users.GetUserByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	listings, err := s.listings.ListListingsByOwner(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, listings, nil
}

// UpdateListingInput defines a partial update. Nil fields keep their values.
// The Clear flags remove optional values and win over a supplied value.
type UpdateListingInput struct {
	Title          *string
	Category       *model.Category
	Price          *string
	Description    *string
	Location       *string
	Latitude       *float64
	Longitude      *float64
	ImageRef       *string
	ClearLatitude  bool
	ClearLongitude bool
	ClearImage     bool
}

// IsEmpty reports whether the input changes nothing.
func (in UpdateListingInput) IsEmpty() bool {
	return in.Title == nil && in.Category == nil && in.Price == nil &&
		in.Description == nil && in.Location == nil &&
		in.Latitude == nil && in.Longitude == nil && in.ImageRef == nil &&
		!in.ClearLatitude && !in.ClearLongitude && !in.ClearImage
}

func (in UpdateListingInput) validate() error {
	v := NewValidationError()
	if in.Title != nil {
		validateRequired(v, "title", *in.Title, maxTitleLength)
	}
	if in.Category != nil {
		validateCategory(v, "category", *in.Category)
	}
	if in.Price != nil {
		validateRequired(v, "price", *in.Price, maxPriceLength)
	}
	if in.Description != nil {
		validateRequired(v, "description", *in.Description, 0)
	}
	if in.Location != nil {
		validateRequired(v, "location", *in.Location, maxLocationLength)
	}
	validateLatitude(v, in.Latitude)
	validateLongitude(v, in.Longitude)
	validateImageRef(v, in.ImageRef)
	return v.Err()
}

// UpdateResult carries the updated listing and the image reference it no
// longer uses, if any.
type UpdateResult struct {
	Listing       *model.Listing
	ReplacedImage string
}

// Update changes a listing owned by requesterID. Ownership is checked
// against the stored row inside the same transaction as the write. An
// empty input writes nothing and returns the stored listing.
func (s *ListingService) Update(ctx context.Context, id, requesterID int64, input UpdateListingInput) (*UpdateResult, error) {
	if requesterID <= 0 {
		return nil, ErrUnauthorized
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if input.IsEmpty() {
		listing, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !listing.IsOwnedBy(requesterID) {
			return nil, ErrForbidden
		}
		return &UpdateResult{Listing: listing}, nil
	}

	var replaced string
	listing, err := s.listings.UpdateListing(ctx, id, requesterID, func(l *model.Listing) error {
		replaced = ""
		oldImage := ""
		if l.HasImage() {
			oldImage = *l.ImageRef
		}

		if input.Title != nil {
			l.Title = *input.Title
		}
		if input.Category != nil {
			l.Category = *input.Category
		}
		if input.Price != nil {
			l.Price = *input.Price
		}
		if input.Description != nil {
			l.Description = *input.Description
		}
		if input.Location != nil {
			l.Location = *input.Location
		}

		switch {
		case input.ClearLatitude:
			l.Latitude = nil
		case input.Latitude != nil:
			l.Latitude = input.Latitude
		}
		switch {
		case input.ClearLongitude:
			l.Longitude = nil
		case input.Longitude != nil:
			l.Longitude = input.Longitude
		}
		switch {
		case input.ClearImage:
			l.ImageRef = nil
		case input.ImageRef != nil:
			l.ImageRef = emptyToNil(input.ImageRef)
		}

		if oldImage != "" && (!l.HasImage() || *l.ImageRef != oldImage) {
			replaced = oldImage
		}
		return nil
	})
	if err != nil {
		return nil, mapOwnedListingError(err)
	}

	s.metrics.IncListingUpdated()

	return &UpdateResult{Listing: listing, ReplacedImage: replaced}, nil
}

// Delete permanently removes a listing owned by requesterID and returns it.
func (s *ListingService) Delete(ctx context.Context, id, requesterID int64) (*model.Listing, error) {
	if requesterID <= 0 {
		return nil, ErrUnauthorized
	}

	listing, err := s.listings.DeleteListing(ctx, id, requesterID)
	if err != nil {
		return nil, mapOwnedListingError(err)
	}

	s.metrics.IncListingDeleted()

	return listing, nil
}

func mapOwnedListingError(err error) error {
	switch {
	case errors.Is(err, repository.ErrListingNotFound):
		return ErrListingNotFound
	case errors.Is(err, repository.ErrNotOwner):
		return ErrForbidden
	default:
		return err
	}
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
