// Package session manages opaque login sessions.
package session

import (
	"context"
	"errors"

	"github.com/keja/keja/internal/model"
)

// ErrSessionNotFound is returned by a Store when no live session exists for a key.
var ErrSessionNotFound = errors.New("session not found")

// Store persists sessions under keys derived from their tokens.
type Store interface {
	Save(ctx context.Context, key string, sess *model.Session) error
	Load(ctx context.Context, key string) (*model.Session, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
