package service

import (
	"context"

	"github.com/keja/keja/internal/model"
	"github.com/keja/keja/internal/repository"
)

// UserStore persists accounts. *repository.Repository implements it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*model.User, error)
}

// ListingStore persists listings. *repository.Repository implements it.
type ListingStore interface {
	CreateListing(ctx context.Context, listing *model.Listing) error
	GetListingByID(ctx context.Context, id int64) (*model.Listing, error)
	ListListingsByOwner(ctx context.Context, ownerID int64) ([]*model.Listing, error)
	SearchListings(ctx context.Context, filter repository.ListingFilter) ([]*model.Listing, error)
	UpdateListing(ctx context.Context, id, requesterID int64, mutate func(*model.Listing) error) (*model.Listing, error)
	DeleteListing(ctx context.Context, id, requesterID int64) (*model.Listing, error)
}

var (
	_ UserStore    = (*repository.Repository)(nil)
	_ ListingStore = (*repository.Repository)(nil)
)
