package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/keja/keja/internal/auth"
	"github.com/keja/keja/internal/model"
	"github.com/keja/keja/internal/service"
)

// DefaultSessionCookie is the cookie carrying the session token.
const DefaultSessionCookie = "keja_session"

// SessionResolver maps a token to a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*model.Session, bool)
}

// UserLoader re-loads the account a session belongs to.
type UserLoader interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger     *slog.Logger
	Sessions   SessionResolver
	Users      UserLoader
	CookieName string
}

// Session resolves the request's session token and, when it names a live
// session of an existing user, attaches the principal to the context.
// The cookie is tried first, then the Bearer header, so a stale cookie does
// not shadow a valid header. Requests without a valid session continue
// anonymously.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, token := range SessionTokens(r, cookieName) {
				principal := resolvePrincipal(r, cfg, token)
				if principal == nil {
					continue
				}
				ctx := auth.ContextWithPrincipal(r.Context(), principal)
				ctx = auth.ContextWithSessionToken(ctx, token)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolvePrincipal(r *http.Request, cfg SessionConfig, token string) *model.Principal {
	sess, ok := cfg.Sessions.Resolve(r.Context(), token)
	if !ok {
		return nil
	}

	user, err := cfg.Users.GetUser(r.Context(), sess.UserID)
	if err != nil {
		if !errors.Is(err, service.ErrUserNotFound) {
			cfg.Logger.Error("failed to load session user",
				slog.String("error", err.Error()),
				slog.String("session_id", sess.ID),
				slog.String("request_id", GetRequestID(r.Context())),
			)
		}
		return nil
	}

	return &model.Principal{
		UserID:    user.ID,
		Handle:    user.Handle,
		SessionID: sess.ID,
	}
}

// SessionTokens returns the candidate session tokens in lookup order: the
// named cookie, then an "Authorization: Bearer <token>" header.
func SessionTokens(r *http.Request, cookieName string) []string {
	var tokens []string
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		tokens = append(tokens, c.Value)
	}

	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		if bearer := strings.TrimSpace(authHeader[7:]); bearer != "" && (len(tokens) == 0 || tokens[0] != bearer) {
			tokens = append(tokens, bearer)
		}
	}

	return tokens
}
