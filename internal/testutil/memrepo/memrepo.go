// Package memrepo is an in-memory stand-in for the Postgres repository.
// It reproduces the repository's error contract so service and handler tests
// run without a database.
package memrepo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/keja/keja/internal/model"
	"github.com/keja/keja/internal/repository"
)

// Store holds users and listings in maps guarded by a single mutex.
type Store struct {
	mu            sync.Mutex
	users         map[int64]model.User
	handles       map[string]int64
	listings      map[int64]model.Listing
	nextUserID    int64
	nextListingID int64

	// PingErr is returned by Ping when set.
	PingErr error
}

// New returns an empty Store whose ids start at 1.
func New() *Store {
	return &Store{
		users:    make(map[int64]model.User),
		handles:  make(map[string]int64),
		listings: make(map[int64]model.Listing),
	}
}

// CreateUser inserts a user, rejecting duplicate handles.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.handles[user.Handle]; ok {
		return repository.ErrHandleExists
	}

	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = time.Now().UTC()
	s.users[user.ID] = *user
	s.handles[user.Handle] = user.ID
	return nil
}

// GetUserByID returns a user by id.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

// GetUserByHandle returns a user by exact handle.
func (s *Store) GetUserByHandle(ctx context.Context, handle string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.handles[handle]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u := s.users[id]
	return &u, nil
}

// DeleteUser removes a user. Used to exercise stale-session paths.
func (s *Store) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		delete(s.handles, u.Handle)
		delete(s.users, id)
	}
}

// CreateListing inserts a listing owned by an existing user.
func (s *Store) CreateListing(ctx context.Context, listing *model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[listing.OwnerID]; !ok {
		return repository.ErrOwnerMissing
	}

	s.nextListingID++
	now := time.Now().UTC()
	listing.ID = s.nextListingID
	listing.CreatedAt = now
	listing.UpdatedAt = now
	s.listings[listing.ID] = cloneListing(*listing)
	return nil
}

// GetListingByID returns a listing by id.
func (s *Store) GetListingByID(ctx context.Context, id int64) (*model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	out := cloneListing(l)
	return &out, nil
}

// ListListingsByOwner returns the owner's listings in id order.
func (s *Store) ListListingsByOwner(ctx context.Context, ownerID int64) ([]*model.Listing, error) {
	return s.collect(func(l *model.Listing) bool { return l.OwnerID == ownerID }), nil
}

// SearchListings applies the filter with the same semantics as the SQL query.
func (s *Store) SearchListings(ctx context.Context, filter repository.ListingFilter) ([]*model.Listing, error) {
	needle := strings.ToLower(filter.Location)
	return s.collect(func(l *model.Listing) bool {
		if filter.Category != "" && l.Category != filter.Category {
			return false
		}
		if needle != "" && !strings.Contains(strings.ToLower(l.Location), needle) {
			return false
		}
		return true
	}), nil
}

// UpdateListing applies mutate to an owned listing under the store lock.
func (s *Store) UpdateListing(ctx context.Context, id, requesterID int64, mutate func(*model.Listing) error) (*model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.listings[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	if !current.IsOwnedBy(requesterID) {
		return nil, repository.ErrNotOwner
	}

	working := cloneListing(current)
	if err := mutate(&working); err != nil {
		return nil, err
	}
	working.ID = current.ID
	working.OwnerID = current.OwnerID
	working.CreatedAt = current.CreatedAt
	working.UpdatedAt = time.Now().UTC()
	s.listings[id] = cloneListing(working)
	return &working, nil
}

// DeleteListing removes an owned listing and returns it.
func (s *Store) DeleteListing(ctx context.Context, id, requesterID int64) (*model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.listings[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	if !current.IsOwnedBy(requesterID) {
		return nil, repository.ErrNotOwner
	}

	delete(s.listings, id)
	return &current, nil
}

// Ping returns PingErr.
func (s *Store) Ping(ctx context.Context) error {
	return s.PingErr
}

func (s *Store) collect(match func(*model.Listing) bool) []*model.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Listing, 0)
	for id := int64(1); id <= s.nextListingID; id++ {
		l, ok := s.listings[id]
		if !ok || !match(&l) {
			continue
		}
		c := cloneListing(l)
		out = append(out, &c)
	}
	return out
}

func cloneListing(l model.Listing) model.Listing {
	if l.Latitude != nil {
		v := *l.Latitude
		l.Latitude = &v
	}
	if l.Longitude != nil {
		v := *l.Longitude
		l.Longitude = &v
	}
	if l.ImageRef != nil {
		v := *l.ImageRef
		l.ImageRef = &v
	}
	return l
}
