package dto

import (
	"time"

	"github.com/keja/keja/internal/model"
)

// RegisterRequest represents the request body for creating an account.
type RegisterRequest struct {
	Handle          string `json:"handle"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm,omitempty"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

// UserResponse represents an account in API responses.
type UserResponse struct {
	ID        int64     `json:"id"`
	Handle    string    `json:"handle"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse carries the session token. The same token is also set as
// a cookie.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Handle:    user.Handle,
		CreatedAt: user.CreatedAt,
	}
}
