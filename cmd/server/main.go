// Command server runs the photo-proofing HTTP API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"proofdeck/internal/api"
	"proofdeck/internal/config"
	"proofdeck/internal/db"
	"proofdeck/internal/db/repository"
	"proofdeck/internal/domain"
	"proofdeck/internal/middleware"
	"proofdeck/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = config.LoadDotEnv(".env")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := db.RunMigrations(gdb); err != nil {
		return err
	}

	albumRepo := repository.NewAlbumRepo(gdb)
	photoRepo := repository.NewPhotoRepo(gdb)

	// A typed nil would defeat the service's storage check, so the port stays
	// nil unless storage is configured.
	var presigner domain.Presigner
	if cfg.Storage.Configured() {
		presigner = service.NewS3Presigner(cfg.Storage)
		logger.Info("object storage configured", "bucket", cfg.Storage.Bucket, "endpoint", cfg.Storage.Endpoint)
	}

	albumSvc := service.NewAlbumService(albumRepo, cfg.ShareTTL, logger.With("component", "albums"))
	photoSvc := service.NewPhotoService(photoRepo, presigner, cfg.UploadURLTTL, cfg.DownloadURLTTL, logger.With("component", "photos"))

	cleanup := service.NewCleanupService(albumRepo, photoRepo, cfg.PendingUploadMaxAge, logger.With("component", "cleanup"))
	if err := cleanup.Start(cfg.CleanupSchedule); err != nil {
		return err
	}
	defer cleanup.Stop()

	validator, err := tokenValidator(cfg)
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})
	defer limiter.Stop()

	eh := &api.ErrorHandler{Logger: logger, IncludeDetails: cfg.IncludeErrorDetails()}
	handler := api.NewHandler(albumSvc, photoSvc, eh)
	router := api.NewRouter(handler, api.RouterOptions{
		Auth:        middleware.Auth(validator),
		CORSOrigins: cfg.CORSAllowedOrigins,
		RateLimit:   limiter.Middleware(),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http api listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newLogger builds the process logger: JSON in production, text for local
// development.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// tokenValidator picks the auth backend: OIDC when an issuer or JWKS URL is
// configured, otherwise the shared HS256 secret.
func tokenValidator(cfg *config.Config) (middleware.TokenValidator, error) {
	if !cfg.Auth.OIDCEnabled() {
		return middleware.NewSharedSecretValidator(cfg.Auth.JWTSecret), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.Auth.JWKSURL != "" {
		return middleware.NewOIDCValidatorFromJWKS(ctx,
			cfg.Auth.JWKSURL, cfg.Auth.IssuerURL, cfg.Auth.Audience, cfg.Auth.AllowedIssuers)
	}
	return middleware.NewOIDCValidator(ctx,
		cfg.Auth.IssuerURL, cfg.Auth.Audience, cfg.Auth.AllowedIssuers)
}
