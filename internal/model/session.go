package model

import "time"

// Session binds an opaque token to an authenticated user.
// Only a hash of the token is used as the storage key.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Handle    string    `json:"handle"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt reports whether the session is expired at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !s.ExpiresAt.IsZero() && t.After(s.ExpiresAt)
}

// Principal is the authenticated identity attached to a request context.
type Principal struct {
	UserID    int64
	Handle    string
	SessionID string
}
