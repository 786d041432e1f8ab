package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/keja/keja/internal/auth"
	"github.com/keja/keja/internal/metrics"
	"github.com/keja/keja/internal/model"
)

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Manager issues, resolves and ends sessions. A user may hold any number
// of concurrent sessions.
type Manager struct {
	store   Store
	ttl     time.Duration
	metrics metrics.Recorder
	now     func() time.Time
}

// NewManager creates a Manager over store. A non-positive ttl uses DefaultTTL.
func NewManager(store Store, ttl time.Duration, recorder metrics.Recorder) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Manager{
		store:   store,
		ttl:     ttl,
		metrics: recorder,
		now:     time.Now,
	}
}

// Begin starts a session for user and returns its bearer token.
func (m *Manager) Begin(ctx context.Context, user *model.User) (string, *model.Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", nil, err
	}

	key, err := auth.SessionKey(token)
	if err != nil {
		return "", nil, err
	}

	now := m.now().UTC()
	sess := &model.Session{
		ID:        ulid.Make().String(),
		UserID:    user.ID,
		Handle:    user.Handle,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Save(ctx, key, sess); err != nil {
		return "", nil, fmt.Errorf("begin session: %w", err)
	}

	m.metrics.IncSessionStarted()
	return token, sess, nil
}

// Resolve returns the live session for token. Empty, malformed, unknown and
// expired tokens all resolve to anonymous (false).
func (m *Manager) Resolve(ctx context.Context, token string) (*model.Session, bool) {
	if token == "" {
		return nil, false
	}

	key, err := auth.SessionKey(token)
	if err != nil {
		return nil, false
	}

	sess, err := m.store.Load(ctx, key)
	if err != nil {
		return nil, false
	}

	if sess.IsExpiredAt(m.now()) {
		_ = m.store.Delete(ctx, key)
		return nil, false
	}

	return sess, true
}

// End invalidates the session for token. Ending an unknown or already
// ended session succeeds.
func (m *Manager) End(ctx context.Context, token string) error {
	key, err := auth.SessionKey(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidTokenFormat) {
			return nil
		}
		return err
	}

	if err := m.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("end session: %w", err)
	}

	m.metrics.IncSessionEnded()
	return nil
}

// Ping checks the backing store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}
