package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/config"
	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/domain/dedup"
	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/domain/registry"
	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/platform/auth"
	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/platform/db"
	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/platform/metrics"
	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/platform/middleware"
	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/platform/sandbox"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, newLogger(cfg.Env))
		},
	}
}

func policyFromConfig(cfg *config.Config) dedup.ValidationPolicy {
	return dedup.ValidationPolicy{
		EnableValidation:          cfg.ValidationEnabled,
		ValidateNewborns:          cfg.ValidateNewborns,
		ValidateWithoutNationalID: cfg.ValidateWithoutNationalID,
	}
}

func poolConfig(cfg *config.Config) db.PoolConfig {
	return db.PoolConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns, Schema: cfg.DBSchema}
}

// mountRoutes registers the domain handlers under /api/v1 and their bare-path
// aliases. Bare routes take mw per route so unmatched paths still answer 404.
func mountRoutes(e *echo.Echo, mw []echo.MiddlewareFunc, dh *dedup.Handler, rh *registry.Handler) *echo.Group {
	api := e.Group("/api/v1", mw...)
	root := e.Group("")
	dh.RegisterRoutes(api, root, mw...)
	rh.RegisterRoutes(api, root, mw...)
	return api
}

func runServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if cfg.IsDev() {
		logger.Warn().Msg("ENV=development: every request is authenticated as admin; do not use in production")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	storeOpts := []registry.Option{registry.WithLogger(logger), registry.WithMetrics(m)}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if cfg.HasDatabase() {
		pool, err := db.NewPool(ctx, poolConfig(cfg))
		if err != nil {
			return err
		}
		defer pool.Close()
		logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")
		storeOpts = append(storeOpts, registry.WithPatientRepository(registry.NewPatientRepo(pool)))
		e.GET("/health/db", db.HealthHandler(pool, cfg.DBSchema))
	}

	store := registry.NewStore(storeOpts...)
	if cfg.SeedDemoData || cfg.SeedPatientCount > 0 {
		seeder := sandbox.NewSeeder(store, logger)
		seedCfg := sandbox.DefaultSeedConfig()
		seedCfg.Demo = cfg.SeedDemoData
		seedCfg.PatientCount = cfg.SeedPatientCount
		if _, err := seeder.Seed(ctx, seedCfg); err != nil {
			// Patients persisted by a previous run collide on their documents.
			if !errors.Is(err, registry.ErrAlreadyExists) {
				return fmt.Errorf("seed demo data: %w", err)
			}
			logger.Warn().Err(err).Msg("demo data already present, skipping seed")
		}
	}

	dedupSvc := dedup.NewService(NewPatientCandidateSource(store), dedup.ServiceConfig{
		Policy:    policyFromConfig(cfg),
		Threshold: cfg.MatchThreshold,
		Timeout:   cfg.MatchTimeout,
	}, logger, m)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger, "/health", "/health/db", "/metrics"))
	e.Use(middleware.SecurityHeaders(!cfg.IsDev()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout, "/metrics"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", metrics.Handler(reg))

	var authn echo.MiddlewareFunc
	if cfg.IsDev() {
		authn = auth.DevAuthMiddleware()
	} else {
		authn = auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
		})
	}

	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rl.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rl.BurstSize = cfg.RateLimitBurst
	}
	limiter := middleware.RateLimit(rl)

	api := mountRoutes(e, []echo.MiddlewareFunc{authn, limiter}, dedup.NewHandler(dedupSvc), registry.NewHandler(store))
	if cfg.IsDev() {
		sandbox.NewHandler(sandbox.NewSeeder(store, logger)).RegisterRoutes(api)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
