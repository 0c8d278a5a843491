// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the LifeQuest HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (and .env).
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build the security components (token codec, password hasher, Google verifier, login throttle).
//  7. Wire domain services and start the session reaper.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/taibuivan/lifequest/internal/api"
	"github.com/taibuivan/lifequest/internal/platform/config"
	"github.com/taibuivan/lifequest/internal/platform/constants"
	"github.com/taibuivan/lifequest/internal/platform/metrics"
	"github.com/taibuivan/lifequest/internal/platform/migration"
	"github.com/taibuivan/lifequest/internal/platform/oauth"
	pgstore "github.com/taibuivan/lifequest/internal/platform/postgres"
	"github.com/taibuivan/lifequest/internal/platform/ratelimit"
	redisstore "github.com/taibuivan/lifequest/internal/platform/redis"
	"github.com/taibuivan/lifequest/internal/platform/sec"
	"github.com/taibuivan/lifequest/internal/users/account"
	"github.com/taibuivan/lifequest/internal/users/auth"
	"github.com/taibuivan/lifequest/internal/users/profile"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("google_enabled", cfg.GoogleClientID != ""),
	)

	// rootCtx lives for the whole process; background workers stop with it.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Use a 30s deadline so misconfiguration is caught quickly rather than
	// hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, pgstore.PoolSettings{
		MaxConns: cfg.DatabaseMaxConns,
		MinConns: cfg.DatabaseMinConns,
	}, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("postgres_pool_closing")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, redisstore.Settings{}, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("redis_client_closing")
		if closeErr := rdb.Close(); closeErr != nil {
			log.Error("redis_close_failed", slog.Any("error", closeErr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	result, err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log)
	must(log, err, "run migrations")
	log.Info("migrations_ready", slog.Uint64("version", uint64(result.To)), slog.Bool("applied", result.Applied))

	// ── 6. Security Components ────────────────────────────────────────────
	tokenCodec, err := sec.NewTokenCodec(cfg.JWTSecret, cfg.JWTAlgorithm, constants.AuthIssuer,
		cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	must(log, err, "initialize token codec")

	googleVerifier, err := oauth.NewGoogleVerifier(startupCtx, cfg.GoogleClientID, cfg.GoogleVerifyTimeout)
	must(log, err, "initialize google verifier")

	loginLimiter := ratelimit.NewLoginLimiter(rdb, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow, log)
	metricsRegistry := metrics.New()

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	txManager := pgstore.NewTxManager(pool)
	sessionRepository := auth.NewSessionRepository(pool)

	authService := auth.NewService(auth.Dependencies{
		Transactor: txManager,
		Accounts:   auth.NewAccountRepository(pool),
		Identities: auth.NewIdentityRepository(pool),
		Sessions:   sessionRepository,
		Tokens:     tokenCodec,
		Passwords:  sec.NewPasswordHasher(cfg.BcryptCost),
		Google:     googleVerifier,
		Throttle:   loginLimiter,
		Metrics:    metricsRegistry,
		Logger:     log,
	})
	accountService := account.NewService(authService, log)
	profileService := profile.NewService(txManager,
		profile.NewPostgresRepository(pool), profile.NewCatalogRepository(pool), log)

	reaper := auth.NewReaper(sessionRepository, cfg.SessionCleanupInterval, metricsRegistry, log)
	go reaper.Run(rootCtx)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(accountService, authService),
		Profile:   profile.NewHandler(profileService, authService),
	}

	server := api.NewServer(rootCtx, cfg, log, metricsRegistry, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	// Stop the reaper and rate-limit janitor before draining requests.
	rootCancel()

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		return
	}

	log.Info("server_stopped")
}

// newLogger builds the process-wide JSON logger tagged with the app name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", "lifequest"))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
