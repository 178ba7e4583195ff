// cmd/refresh-feeds/main.go
// Rebuilds the cached feed of every user with subscriptions or follows.
// Badger allows one process per cache directory, so run this while the
// server is stopped, or point CACHE_PATH at the server's cache after shutdown.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"Subfeed/internal/config"
	"Subfeed/internal/core/feeds"
	"Subfeed/internal/core/identity"
	"Subfeed/internal/db/badgerstore"
	postgresRepo "Subfeed/internal/db/postgres"
)

func main() {
	usersFlag := flag.String("users", "", "comma-separated user ids (default: every user with subscriptions or follows)")
	reason := flag.String("reason", "batch", "refresh reason recorded in the logs")
	workers := flag.Int("workers", 4, "users refreshed concurrently")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	kv, err := badgerstore.Open(cfg.Cache.Path, cfg.Cache.InMemory)
	if err != nil {
		logger.Error("failed to open feed cache", "path", cfg.Cache.Path, "error", err)
		os.Exit(1)
	}
	defer func() { _ = kv.Close() }()

	service := feeds.NewFeedService(
		postgresRepo.NewPostRepository(db),
		postgresRepo.NewCommunityRepository(db),
		postgresRepo.NewUserRepository(db),
		identity.NewCachingResolver(postgresRepo.NewNameDirectory(db), cfg.Identity.ResolverConfig(), logger),
		badgerstore.NewFeedCache(kv, cfg.Cache.TTL),
		cfg.Feed.ServiceConfig(),
		logger,
	)

	ctx := context.Background()

	var userIDs []string
	if *usersFlag != "" {
		for _, id := range strings.Split(*usersFlag, ",") {
			if id = strings.TrimSpace(id); id != "" {
				userIDs = append(userIDs, id)
			}
		}
	} else {
		userIDs, err = postgresRepo.ListFeedUsers(ctx, db)
		if err != nil {
			logger.Error("failed to list users", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("refreshing feeds", "users", len(userIDs), "workers", *workers)

	start := time.Now()
	var refreshed, failed, items atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*workers, 1))
	for _, userID := range userIDs {
		g.Go(func() error {
			result, err := service.RefreshFeed(gctx, userID, feeds.RefreshRequest{Reason: *reason})
			if err != nil {
				failed.Add(1)
				logger.Warn("refresh failed", "user", userID, "error", err)
				return nil
			}
			refreshed.Add(1)
			items.Add(int64(result.NewItemsCount))
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("refresh complete",
		"refreshed", refreshed.Load(),
		"failed", failed.Load(),
		"items", items.Load(),
		"duration", time.Since(start))

	if failed.Load() > 0 {
		_ = kv.Close()
		os.Exit(1)
	}
}
