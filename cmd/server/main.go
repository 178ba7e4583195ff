package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Subfeed/internal/api/handlers"
	"Subfeed/internal/api/middleware"
	"Subfeed/internal/api/routes"
	"Subfeed/internal/config"
	"Subfeed/internal/core/feeds"
	"Subfeed/internal/core/identity"
	"Subfeed/internal/db/badgerstore"
	postgresRepo "Subfeed/internal/db/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if err := goose.SetDialect("postgres"); err != nil {
		logger.Error("failed to set goose dialect", "error", err)
		os.Exit(1)
	}
	if err := goose.Up(db, cfg.Database.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations completed successfully")

	kv, err := badgerstore.Open(cfg.Cache.Path, cfg.Cache.InMemory)
	if err != nil {
		logger.Error("failed to open feed cache", "path", cfg.Cache.Path, "error", err)
		os.Exit(1)
	}
	defer func() { _ = kv.Close() }()

	// Initialize repositories and services
	postRepo := postgresRepo.NewPostRepository(db)
	communityRepo := postgresRepo.NewCommunityRepository(db)
	userRepo := postgresRepo.NewUserRepository(db)
	names := identity.NewCachingResolver(postgresRepo.NewNameDirectory(db), cfg.Identity.ResolverConfig(), logger)
	feedCache := badgerstore.NewFeedCache(kv, cfg.Cache.TTL)

	feedService := feeds.NewFeedService(
		postRepo,
		communityRepo,
		userRepo,
		names,
		feedCache,
		cfg.Feed.ServiceConfig(),
		logger,
	)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.UserIDHeader},
		MaxAge:         300,
	}))
	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	routes.RegisterHealthRoutes(r, map[string]routes.HealthCheck{
		"database": db.PingContext,
		"cache": func(context.Context) error {
			if kv.IsClosed() {
				return errors.New("feed cache is closed")
			}
			return nil
		},
	})
	r.Handle("/metrics", promhttp.Handler())

	refreshLimiter := middleware.NewUserRateLimiter(cfg.Server.RefreshInterval, cfg.Server.RefreshBurst)
	defer refreshLimiter.Stop()

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow))
		routes.RegisterFeedRoutes(r, feedService, refreshLimiter)
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("feed server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
