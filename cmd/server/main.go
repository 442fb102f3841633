// Command server runs the rules backend HTTP service.
//
// Startup order is deliberate: configuration, logging, database (with the
// schema check), tracing, then the HTTP server. The server never accepts a
// request before the rules table is confirmed to exist; a failed database
// init is fatal, not degraded.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/merchline/shopify-rules-backend/docs"
	"github.com/merchline/shopify-rules-backend/internal/config"
	httpapi "github.com/merchline/shopify-rules-backend/internal/http"
	"github.com/merchline/shopify-rules-backend/internal/observability"
	"github.com/merchline/shopify-rules-backend/internal/repo"
	"github.com/merchline/shopify-rules-backend/internal/shopify"
	"github.com/merchline/shopify-rules-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Best-effort .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	// Database and schema gate: nothing serves until the rules table exists.
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("open database")
	}
	if err := repo.EnsureSchema(db); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	// The shop proxy only works with an Admin API token; without one the
	// endpoint reports itself unavailable instead of failing requests.
	var admin *shopify.AdminClient
	if cfg.Shopify.AccessToken != "" {
		admin = shopify.NewAdminClient(cfg.Shopify.AccessToken, cfg.Shopify.APIVersion)
	} else {
		log.Warn().Msg("SHOPIFY_ACCESS_TOKEN not set; /api/shop proxy disabled")
	}
	if cfg.Shopify.APISecret == "" {
		log.Warn().Msg("SHOPIFY_API_SECRET not set; session verification in dev mode")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, admin, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
