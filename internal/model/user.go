// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account. The handle is immutable after creation.
type User struct {
	ID           int64     `json:"id"`
	Handle       string    `json:"handle"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
