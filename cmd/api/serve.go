package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/keja/keja/internal/config"
	"github.com/keja/keja/internal/metrics"
	"github.com/keja/keja/internal/repository"
	"github.com/keja/keja/internal/server"
	"github.com/keja/keja/internal/service"
	"github.com/keja/keja/internal/session"
	"github.com/keja/keja/internal/upload"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP API. Pending migrations are applied first unless
AUTO_MIGRATE=false.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	logger := initLogger(cfg)

	if cfg.AutoMigrate {
		if err := repository.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("failed to apply migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			return fmt.Errorf("migrate: %s", sanitizeError(err, cfg.DatabaseURL))
		}
		logger.Info("migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return fmt.Errorf("connect database: %s", sanitizeError(err, cfg.DatabaseURL))
	}
	logger.Info("connected to database")

	store, closeStore, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		repo.Close()
		return err
	}

	uploads, err := upload.NewStore(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		repo.Close()
		_ = closeStore(ctx)
		return err
	}

	recorder := metrics.NewInMemory()
	identity := service.NewIdentityService(repo, recorder)
	listings := service.NewListingService(repo, repo, recorder)
	sessions := session.NewManager(store, cfg.SessionTTL, recorder)

	router := server.NewRouter(server.RouterConfig{
		IsDevelopment:      cfg.IsDevelopment(),
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		MaxUploadSize:      cfg.MaxUploadSize,
		CookieName:         cfg.SessionCookieName,
		CookieSecure:       cfg.CookieSecure(),
	}, server.Dependencies{
		Identity: identity,
		Listings: listings,
		Sessions: sessions,
		Uploads:  uploads,
		Database: repo,
		Metrics:  recorder,
	}, logger)

	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: sessions close before the database pool.
	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("sessions", closeStore)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"session_backend", cfg.SessionBackend,
		"upload_dir", cfg.UploadDir,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

// openSessionStore connects the configured session backend and returns
// its close function.
func openSessionStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, server.ShutdownFunc, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendMemory:
		logger.Warn("using in-memory sessions; sessions are lost on restart")
		return session.NewMemoryStore(), func(context.Context) error { return nil }, nil
	default:
		store, err := session.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			return nil, nil, fmt.Errorf("connect redis: %s", sanitizeError(err, cfg.RedisURL))
		}
		logger.Info("connected to Redis")
		return store, func(context.Context) error { return store.Close() }, nil
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
