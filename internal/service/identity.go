package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keja/keja/internal/auth"
	"github.com/keja/keja/internal/metrics"
	"github.com/keja/keja/internal/model"
	"github.com/keja/keja/internal/repository"
)

// IdentityService registers and authenticates accounts.
type IdentityService struct {
	users   UserStore
	metrics metrics.Recorder
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(users UserStore, recorder metrics.Recorder) *IdentityService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &IdentityService{
		users:   users,
		metrics: recorder,
	}
}

// RegisterInput defines input for creating an account.
// PasswordConfirm is checked only when supplied.
type RegisterInput struct {
	Handle          string
	Password        string
	PasswordConfirm string
}

// Register creates an account. The handle is trimmed; comparison is exact
// and case-sensitive. Concurrent registrations of one handle cannot both
// succeed because uniqueness is enforced by the store.
func (s *IdentityService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	handle := strings.TrimSpace(input.Handle)

	v := NewValidationError()
	validateHandle(v, handle)
	if input.Password == "" {
		v.Add("password", "is required")
	} else if input.PasswordConfirm != "" && input.Password != input.PasswordConfirm {
		v.Add("password_confirm", "does not match password")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Handle:       handle,
		PasswordHash: hash,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrHandleExists) {
			return nil, ErrDuplicateHandle
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Authenticate checks a handle and password. Unknown handles and wrong
// passwords both yield ErrInvalidCredentials and cost one hash verification.
func (s *IdentityService) Authenticate(ctx context.Context, handle, password string) (*model.User, error) {
	user, err := s.users.GetUserByHandle(ctx, strings.TrimSpace(handle))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.BurnVerify(password)
			s.metrics.IncLogin(metrics.LoginFailed)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginFailed)
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLogin(metrics.LoginSuccess)

	return user, nil
}

// LookupByHandle returns the account with exactly this handle.
func (s *IdentityService) LookupByHandle(ctx context.Context, handle string) (*model.User, error) {
	user, err := s.users.GetUserByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUser returns the account with id.
func (s *IdentityService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
