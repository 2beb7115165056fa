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

	"github.com/cenkalti/backoff/v4"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/inflectionhq/inflection-mcp/internal/adapter/driven/inflection"
	"github.com/inflectionhq/inflection-mcp/internal/adapter/driven/memory"
	httphandler "github.com/inflectionhq/inflection-mcp/internal/adapter/driving/http"
	"github.com/inflectionhq/inflection-mcp/internal/application"
	"github.com/inflectionhq/inflection-mcp/internal/config"
	"github.com/inflectionhq/inflection-mcp/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"auth_base_url", cfg.AuthBaseURL,
		"poll_interval", cfg.PollInterval,
		"credentials_configured", cfg.HasCredentials(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire the credential store and marketing client.
	store := memory.NewCredentialStore()
	client := inflection.NewClient(inflection.Config{
		AuthBaseURL:       cfg.AuthBaseURL,
		CampaignBaseURL:   cfg.CampaignBaseURL,
		CampaignV3BaseURL: cfg.CampaignV3BaseURL,
		Identity:          cfg.Identity,
		Secret:            cfg.Secret,
		Timeout:           cfg.RequestTimeout,
		MaxRetries:        cfg.MaxRetries,
	}, store, slog.Default())

	// 4. Log in up front when credentials are configured, retrying transient
	// failures. A rejected login or missing credential is permanent; the
	// service still starts and each request will retry on demand.
	if cfg.HasCredentials() {
		if err := startupLogin(ctx, client); err != nil {
			slog.Warn("startup authentication failed, continuing unauthenticated", "error", err)
		} else {
			slog.Info("authenticated with marketing API")
		}
	} else {
		slog.Info("no credentials configured, upstream operations disabled until INFLECTION_EMAIL and INFLECTION_PASSWORD are set")
	}

	// 5. Application services.
	journeySvc := application.NewJourneyService(client)
	reportSvc := application.NewReportService(client, slog.Default())
	hub := application.NewHub(slog.Default())

	// 6. Start the heartbeat publishers.
	heartbeat := application.NewHeartbeat(journeySvc, store, hub, cfg.PollInterval, cfg.HealthInterval, slog.Default())
	go heartbeat.Start(ctx)

	// 7. HTTP surface.
	apiHandler := httphandler.NewHandler(journeySvc, reportSvc, hub, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterRoutes(mux, apiHandler)
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// SSE connections stay open indefinitely, so no write timeout.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("inflection-mcp started", "listen_addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// startupLogin attempts the initial login with a short exponential backoff.
// Rejected credentials and missing configuration are permanent failures; only
// transport-level errors are retried.
func startupLogin(ctx context.Context, client driven.MarketingClient) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		err := client.Login(ctx)
		if err == nil {
			return nil
		}
		var authErr *driven.AuthError
		if errors.As(err, &authErr) || errors.Is(err, driven.ErrMissingCredentials) {
			return backoff.Permanent(err)
		}
		slog.Warn("startup login attempt failed, retrying", "error", err)
		return err
	}, backoff.WithContext(policy, ctx))
}
