// Package main is the entry point for the Community Alert API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"github.com/comunityalert/backend/internal/auth"
	"github.com/comunityalert/backend/internal/config"
	"github.com/comunityalert/backend/internal/handler"
	"github.com/comunityalert/backend/internal/metrics"
	"github.com/comunityalert/backend/internal/middleware"
	"github.com/comunityalert/backend/internal/repo"
	"github.com/comunityalert/backend/internal/service"
	"github.com/comunityalert/backend/migrations"
)

const tokenIssuer = "communityalert"

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic. The container
	// orchestrator may start us before Postgres is ready, so the ping is
	// retried with exponential backoff for up to 30 seconds.
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelPing()
	backoff := retry.WithMaxDuration(30*time.Second, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(pingCtx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			slog.Warn("database not ready, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Migrations -------------------------------------------------------
	if cfg.MigrateOnStart {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			slog.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied")
	}

	// --- Token store ------------------------------------------------------
	// Revoked token ids live in Redis when REDIS_ADDR is set, so revocation
	// survives restarts and is shared across replicas. Without Redis the
	// in-process store is used; fine for a single instance.
	var tokenStore auth.TokenStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		tokenStore = auth.NewRedisTokenStore(rdb)
		slog.Info("redis token store enabled", "addr", cfg.RedisAddr)
	} else {
		tokenStore = auth.NewMemoryTokenStore()
	}
	tokens := auth.NewTokenService(cfg.JWTSecret, tokenIssuer, cfg.TokenTTL, tokenStore)

	// --- Repos, services, handlers ----------------------------------------
	m := metrics.New()

	issueRepo := repo.NewIssueRepo(pool)
	tagRepo := repo.NewTagRepo(pool)
	notificationRepo := repo.NewNotificationRepo(pool)
	userRepo := repo.NewUserRepo(pool)
	locationRepo := repo.NewLocationRepo(pool)

	tagService := service.NewTagService(tagRepo)
	notificationService := service.NewNotificationService(notificationRepo, m)
	issueService := service.NewIssueService(
		issueRepo,
		userRepo,
		locationRepo,
		tagService,
		notificationService,
		logger,
		m,
	)

	srvHandler := handler.NewServer(issueService, tagService, notificationService, logger)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS →
	// body limit → metrics → current user. The current-user middleware never
	// rejects; it only attaches an identity when a valid token is presented.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(1 << 20)) // 1 MiB
	r.Use(middleware.NewMetrics(m))
	r.Use(middleware.NewCurrentUser(tokens, userRepo, logger))

	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", srvHandler.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// runMigrations applies pending goose migrations from the embedded FS.
// goose needs database/sql, not the pgx pool, so a separate short-lived
// connection is opened here.
func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(context.Background())
	return err
}
