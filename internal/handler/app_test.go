package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/keja/keja/internal/handler/dto"
	"github.com/keja/keja/internal/metrics"
	"github.com/keja/keja/internal/middleware"
	"github.com/keja/keja/internal/service"
	"github.com/keja/keja/internal/session"
	"github.com/keja/keja/internal/testutil/memrepo"
	"github.com/keja/keja/internal/upload"
)

// testApp wires the handlers over in-memory stores.
type testApp struct {
	router   http.Handler
	store    *memrepo.Store
	sessions *session.MemoryStore
	uploads  *upload.Store
	metrics  *metrics.InMemoryRecorder
	logs     *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	app := &testApp{
		store:    memrepo.New(),
		sessions: session.NewMemoryStore(),
		metrics:  metrics.NewInMemory(),
		logs:     &bytes.Buffer{},
	}

	uploads, err := upload.NewStore(t.TempDir(), 1<<20)
	require.NoError(t, err)
	app.uploads = uploads

	logger := slog.New(slog.NewJSONHandler(app.logs, nil))
	identity := service.NewIdentityService(app.store, app.metrics)
	listings := service.NewListingService(app.store, app.store, app.metrics)
	manager := session.NewManager(app.sessions, time.Hour, app.metrics)

	h := New()
	accounts := NewAccountHandler(identity, listings, manager, CookieConfig{}, logger)
	listingHandler := NewListingHandler(listings, uploads, logger)

	r := chi.NewRouter()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
	r.Use(middleware.Session(middleware.SessionConfig{
		Logger:   logger,
		Sessions: manager,
		Users:    identity,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", accounts.Register)
		r.Post("/login", accounts.Login)
		r.Get("/listings", listingHandler.Search)
		r.Get("/listings/{id}", listingHandler.Get)
		r.Get("/users/{handle}/listings", listingHandler.ListByUser)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth())
			r.Post("/logout", accounts.Logout)
			r.Get("/me", accounts.Me)
			r.Get("/me/listings", accounts.MyListings)
			r.Post("/listings", listingHandler.Create)
			r.Patch("/listings/{id}", listingHandler.Update)
			r.Delete("/listings/{id}", listingHandler.Delete)
		})
	})

	app.router = r
	return app
}

func (a *testApp) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	return a.do(t, method, path, token, r, "application/json")
}

// signUp registers handle and returns a session token for it.
func (a *testApp) signUp(t *testing.T, handle string) string {
	t.Helper()

	rec := a.doJSON(t, http.MethodPost, "/api/v1/register", "", dto.RegisterRequest{Handle: handle, Password: "pw-" + handle})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.doJSON(t, http.MethodPost, "/api/v1/login", "", dto.LoginRequest{Handle: handle, Password: "pw-" + handle})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.LoginResponse
	decodeBody(t, rec, &resp)
	return resp.Token
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(a *testApp, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorBody {
	t.Helper()
	var resp dto.ErrorResponse
	decodeBody(t, rec, &resp)
	return resp.Error
}

// multipartBody builds a form with fields and an optional image part.
func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
