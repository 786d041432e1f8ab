package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/keja/keja/internal/auth"
	"github.com/keja/keja/internal/handler/dto"
	"github.com/keja/keja/internal/middleware"
	"github.com/keja/keja/internal/service"
	"github.com/keja/keja/internal/session"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AccountHandler handles registration, login and the current account.
type AccountHandler struct {
	identity *service.IdentityService
	listings *service.ListingService
	sessions *session.Manager
	cookie   CookieConfig
	logger   *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(
	identity *service.IdentityService,
	listings *service.ListingService,
	sessions *session.Manager,
	cookie CookieConfig,
	logger *slog.Logger,
) *AccountHandler {
	if cookie.Name == "" {
		cookie.Name = middleware.DefaultSessionCookie
	}
	return &AccountHandler{
		identity: identity,
		listings: listings,
		sessions: sessions,
		cookie:   cookie,
		logger:   logger,
	}
}

// Register handles POST /api/v1/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.identity.Register(r.Context(), service.RegisterInput{
		Handle:          req.Handle,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", user.ID,
		"handle", user.Handle,
	)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Login handles POST /api/v1/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.identity.Authenticate(r.Context(), req.Handle, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	token, sess, err := h.sessions.Begin(r.Context(), user)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("user_logged_in",
		"user_id", user.ID,
		"session_id", sess.ID,
	)

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User:      dto.ToUserResponse(user),
	})
}

// Logout handles POST /api/v1/logout. It ends the session the request was
// authenticated with.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())
	if err := h.sessions.End(r.Context(), auth.SessionTokenFromContext(r.Context())); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("user_logged_out",
		"user_id", principal.UserID,
		"session_id", principal.SessionID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/me.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.GetUser(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// MyListings handles GET /api/v1/me/listings.
func (h *AccountHandler) MyListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.ListByOwner(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListingListResponse{
		Data: dto.ToListingResponses(listings),
	})
}
