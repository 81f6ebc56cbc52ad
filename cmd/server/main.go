// Package main runs the wildlife tracker API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/valkaylee/wildlifetracker/internal/platform/migrations"
	tracker "github.com/valkaylee/wildlifetracker/internal/tracker"
	"github.com/valkaylee/wildlifetracker/internal/tracker/auth"
	"github.com/valkaylee/wildlifetracker/internal/tracker/config"
	"github.com/valkaylee/wildlifetracker/internal/tracker/httpapi"
	"github.com/valkaylee/wildlifetracker/internal/tracker/metrics"
	"github.com/valkaylee/wildlifetracker/internal/tracker/middleware"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage/postgres"
	"github.com/valkaylee/wildlifetracker/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logger.NewDefault("server")
		fallback.WithError(err).Error("load configuration")
		os.Exit(1)
	}

	log, err := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fallback := logger.NewDefault("server")
		fallback.WithError(err).Error("configure logging")
		os.Exit(1)
	}
	log = log.WithField("service", "tracker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stores tracker.Stores
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			log.WithError(err).Error("open database")
			os.Exit(1)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			log.WithError(err).Error("ping database")
			os.Exit(1)
		}
		if err := migrations.Apply(ctx, db); err != nil {
			log.WithError(err).Error("apply migrations")
			os.Exit(1)
		}

		store := postgres.New(db)
		stores = tracker.Stores{
			Users:         store,
			Sightings:     store,
			Notifications: store,
			Species:       store,
			Reports:       store,
		}
		log.Info("using postgres storage")
	} else {
		log.Warn("no database DSN configured; using in-memory storage")
	}

	app, err := tracker.New(stores, tracker.Options{UploadsDir: cfg.Uploads.Dir}, log)
	if err != nil {
		log.WithError(err).Error("build application")
		os.Exit(1)
	}

	secret := cfg.Auth.TokenSecret
	if secret == "" {
		log.Warn("auth.token_secret not set; generating an ephemeral secret, tokens will not survive restarts")
		secret = time.Now().Format(time.RFC3339Nano)
	}
	tokens, err := auth.NewIssuer(secret, cfg.Auth.TokenTTL)
	if err != nil {
		log.WithError(err).Error("configure token issuer")
		os.Exit(1)
	}

	authed := middleware.NewAuth(tokens, []string{
		"/healthz",
		"/metrics",
		"/auth/register",
		"/auth/login",
		"/commands",
		"/leaderboard",
		"/leaderboard/",
	}, log)
	cors := middleware.NewCORS(cfg.CORS.AllowedOrigins)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", metrics.InstrumentHandler(httpapi.NewHandler(app, tokens)))

	handler := cors.Handler(limiter.Handler(authed.Handler(mux)))

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := app.Start(ctx); err != nil {
		log.WithError(err).Error("start application services")
		os.Exit(1)
	}

	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("server error")
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}
	if err := app.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application stop")
	}

	log.Info("stopped")
}
