package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/keja/keja/internal/model"
)

// ListingFilter narrows a listing search. Zero values are not applied.
type ListingFilter struct {
	Category model.Category
	Location string
}

const listingColumns = `id, owner_id, title, category, price, description, location, latitude, longitude, image_ref, created_at, updated_at`

// CreateListing inserts a new listing and fills in ID and timestamps.
func (r *Repository) CreateListing(ctx context.Context, listing *model.Listing) error {
	query := `
		INSERT INTO listings (owner_id, title, category, price, description, location, latitude, longitude, image_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		listing.OwnerID,
		listing.Title,
		string(listing.Category),
		listing.Price,
		listing.Description,
		listing.Location,
		listing.Latitude,
		listing.Longitude,
		listing.ImageRef,
	).Scan(
		&listing.ID,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrOwnerMissing
		}
		return fmt.Errorf("failed to create listing: %w", err)
	}

	return nil
}

// GetListingByID retrieves a listing by its ID.
func (r *Repository) GetListingByID(ctx context.Context, id int64) (*model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	listing, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing by ID: %w", err)
	}

	return listing, nil
}

// ListListingsByOwner returns all listings of a user in insertion order.
func (r *Repository) ListListingsByOwner(ctx context.Context, ownerID int64) ([]*model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE owner_id = $1 ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings by owner: %w", err)
	}

	return collectListings(rows)
}

// SearchListings returns every listing matching the filter in insertion order.
// Category is an exact match; Location is a case-insensitive substring match.
func (r *Repository) SearchListings(ctx context.Context, filter ListingFilter) ([]*model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE TRUE`
	args := []any{}
	argIndex := 1

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, string(filter.Category))
		argIndex++
	}

	if filter.Location != "" {
		query += fmt.Sprintf(` AND location ILIKE '%%' || $%d || '%%' ESCAPE '\'`, argIndex)
		args = append(args, escapeLike(filter.Location))
		argIndex++
	}

	query += " ORDER BY id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}

	return collectListings(rows)
}

// UpdateListing locks the listing row, checks that requesterID owns it, lets
// mutate change it, and writes it back. Concurrent updates serialize on the
// row lock, so the last committed writer wins.
func (r *Repository) UpdateListing(ctx context.Context, id, requesterID int64, mutate func(*model.Listing) error) (*model.Listing, error) {
	var updated *model.Listing

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		listing, err := lockOwnedListing(ctx, tx, id, requesterID)
		if err != nil {
			return err
		}

		if err := mutate(listing); err != nil {
			return err
		}

		query := `
			UPDATE listings
			SET title = $2, category = $3, price = $4, description = $5, location = $6,
			    latitude = $7, longitude = $8, image_ref = $9, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`
		err = tx.QueryRow(ctx, query,
			listing.ID,
			listing.Title,
			string(listing.Category),
			listing.Price,
			listing.Description,
			listing.Location,
			listing.Latitude,
			listing.Longitude,
			listing.ImageRef,
		).Scan(&listing.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update listing: %w", err)
		}

		updated = listing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteListing permanently removes a listing owned by requesterID.
// Returns the removed record so callers can clean up its image.
func (r *Repository) DeleteListing(ctx context.Context, id, requesterID int64) (*model.Listing, error) {
	var deleted *model.Listing

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		listing, err := lockOwnedListing(ctx, tx, id, requesterID)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete listing: %w", err)
		}

		deleted = listing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// lockOwnedListing selects a listing FOR UPDATE and enforces ownership.
func lockOwnedListing(ctx context.Context, tx pgx.Tx, id, requesterID int64) (*model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1 FOR UPDATE`

	listing, err := scanListing(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to lock listing: %w", err)
	}

	if !listing.IsOwnedBy(requesterID) {
		return nil, ErrNotOwner
	}

	return listing, nil
}

func collectListings(rows pgx.Rows) ([]*model.Listing, error) {
	defer rows.Close()

	listings := make([]*model.Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	return listings, nil
}

// scanListing scans a single row into a Listing model.
func scanListing(row pgx.Row) (*model.Listing, error) {
	var (
		listing  model.Listing
		category string
	)
	err := row.Scan(
		&listing.ID,
		&listing.OwnerID,
		&listing.Title,
		&category,
		&listing.Price,
		&listing.Description,
		&listing.Location,
		&listing.Latitude,
		&listing.Longitude,
		&listing.ImageRef,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	listing.Category = model.Category(category)
	return &listing, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
