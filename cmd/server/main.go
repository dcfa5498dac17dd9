// Command server runs the shoutbox backend: an HTTP API with a live
// server-sent event stream, an in-memory history buffer, a durable audit
// store, and cron-triggered maintenance endpoints.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/deckforge/go-shoutbox-backend/internal/config"
	httpapi "github.com/deckforge/go-shoutbox-backend/internal/http"
	"github.com/deckforge/go-shoutbox-backend/internal/observability"
	"github.com/deckforge/go-shoutbox-backend/internal/repo"
	"github.com/deckforge/go-shoutbox-backend/internal/shout"
	"github.com/deckforge/go-shoutbox-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	sysutil.SetLogLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	// One broadcaster per process. The hub goroutine owns the heartbeat and
	// drains all subscribers when ctx is cancelled.
	hub := shout.NewHub(cfg.Shout.SubscriberBuffer, cfg.Shout.HeartbeatInterval)
	go hub.Run(ctx)
	history := shout.NewHistory(cfg.Shout.HistoryCap)

	engine := gin.New()
	httpapi.RegisterRoutes(engine, httpapi.Deps{DB: db, Hub: hub, History: history}, cfg)

	addr := ":" + sysutil.FirstNonEmpty(cfg.Port, "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		// WriteTimeout stays 0 in config: a positive value would cut off
		// long-lived event streams.
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("version", version).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}

	// Stop accepting requests, then flush traces. Open event streams are
	// closed by the hub when ctx is cancelled, so Shutdown does not hang on
	// them.
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := shutdownOTel(shutCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	log.Info().Msg("server stopped")
}
