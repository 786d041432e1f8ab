package service

import (
	"context"
	"time"

	"github.com/keja/keja/internal/model"
	"github.com/keja/keja/internal/repository"
)

// SearchInput defines search criteria. Empty strings are not applied.
type SearchInput struct {
	Category string
	Location string
}

// Search returns every listing matching all supplied criteria, in
// insertion order. Category is an exact match, so an unknown category
// matches nothing. Location is a case-insensitive substring match taken
// verbatim, in which wildcard characters and whitespace match literally.
func (s *ListingService) Search(ctx context.Context, input SearchInput) ([]*model.Listing, error) {
	filter := repository.ListingFilter{
		Category: model.Category(input.Category),
		Location: input.Location,
	}

	start := time.Now()
	listings, err := s.listings.SearchListings(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.metrics.IncSearch()
	s.metrics.ObserveSearchDuration(time.Since(start))

	return listings, nil
}
