package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/keja/keja/internal/handler"
	"github.com/keja/keja/internal/metrics"
	"github.com/keja/keja/internal/middleware"
	"github.com/keja/keja/internal/service"
	"github.com/keja/keja/internal/session"
	"github.com/keja/keja/internal/upload"
)

// multipartOverhead is the body allowance on top of the image size for the
// text fields and part headers of a listing form.
const multipartOverhead = 1 << 20

// RouterConfig holds the HTTP-facing settings.
type RouterConfig struct {
	IsDevelopment      bool
	CORSAllowedOrigins []string
	MaxRequestBodySize int64
	MaxUploadSize      int64
	CookieName         string
	CookieSecure       bool
}

// Dependencies are the services the routes are served from.
type Dependencies struct {
	Identity *service.IdentityService
	Listings *service.ListingService
	Sessions *session.Manager
	Uploads  *upload.Store
	Database handler.HealthChecker
	Metrics  metrics.Snapshotter
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig, deps Dependencies, logger *slog.Logger) *chi.Mux {
	h := handler.New()
	healthHandler := handler.NewHealthHandler(deps.Database, deps.Sessions)
	metricsHandler := handler.NewMetricsHandler(deps.Metrics)
	accountHandler := handler.NewAccountHandler(deps.Identity, deps.Listings, deps.Sessions, handler.CookieConfig{
		Name:   cfg.CookieName,
		Secure: cfg.CookieSecure,
	}, logger)
	listingHandler := handler.NewListingHandler(deps.Listings, deps.Uploads, logger)
	uploadsHandler := handler.NewUploadsHandler(deps.Uploads.Dir())

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = cfg.IsDevelopment
	securityCfg.MaxRequestBodySize = cfg.MaxRequestBodySize

	corsCfg := middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment))
	r.Use(middleware.Security(securityCfg))
	r.Use(middleware.CORS(corsCfg))

	r.Get("/", h.Index)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)
	r.Get("/uploads/*", uploadsHandler.Serve)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(middleware.SessionConfig{
			Logger:     logger,
			Sessions:   deps.Sessions,
			Users:      deps.Identity,
			CookieName: cfg.CookieName,
		}))

		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

			r.Post("/register", accountHandler.Register)
			r.Post("/login", accountHandler.Login)
			r.Get("/listings", listingHandler.Search)
			r.Get("/listings/{id}", listingHandler.Get)
			r.Get("/users/{handle}/listings", listingHandler.ListByUser)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth())

				r.Post("/logout", accountHandler.Logout)
				r.Get("/me", accountHandler.Me)
				r.Get("/me/listings", accountHandler.MyListings)
				r.Delete("/listings/{id}", listingHandler.Delete)
			})
		})

		// Listing writes may carry an image.
		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodySize(cfg.MaxUploadSize + multipartOverhead))
			r.Use(middleware.RequireAuth())

			r.Post("/listings", listingHandler.Create)
			r.Patch("/listings/{id}", listingHandler.Update)
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
