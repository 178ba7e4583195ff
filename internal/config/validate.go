package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config validation errors
var (
	ErrInvalidPort         = errors.New("server port must be between 1 and 65535")
	ErrMissingDatabaseURL  = errors.New("database url is required")
	ErrMissingCachePath    = errors.New("cache path is required unless the cache is in memory")
	ErrInvalidTimeout      = errors.New("timeout must be positive")
	ErrInvalidConcurrency  = errors.New("feed concurrency must be positive")
	ErrInvalidRefreshLimit = errors.New("feed refresh limit must be between 1 and 100")
	ErrInvalidBreaker      = errors.New("breaker failure ratio must be in (0, 1] and min requests positive")
	ErrInvalidRateLimit    = errors.New("rate limit requests and window must be positive")
	ErrInvalidRefreshRate  = errors.New("refresh interval and burst must be positive")
	ErrInvalidLogLevel     = errors.New("log level must be one of debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("log format must be json or text")
)

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Server.Port)
	}
	if c.Server.RateLimitRequests <= 0 || c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("%w: got %d per %v", ErrInvalidRateLimit, c.Server.RateLimitRequests, c.Server.RateLimitWindow)
	}

	if c.Server.RefreshInterval <= 0 || c.Server.RefreshBurst <= 0 {
		return fmt.Errorf("%w: got %d per %v", ErrInvalidRefreshRate, c.Server.RefreshBurst, c.Server.RefreshInterval)
	}

	if c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}

	if !c.Cache.InMemory && c.Cache.Path == "" {
		return ErrMissingCachePath
	}

	if err := c.validateFeed(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateFeed() error {
	timeouts := []struct {
		name  string
		value fmt.Stringer
		ok    bool
	}{
		{"feed.source_timeout", c.Feed.SourceTimeout, c.Feed.SourceTimeout > 0},
		{"feed.directory_timeout", c.Feed.DirectoryTimeout, c.Feed.DirectoryTimeout > 0},
		{"feed.resolve_timeout", c.Feed.ResolveTimeout, c.Feed.ResolveTimeout > 0},
		{"feed.cache_timeout", c.Feed.CacheTimeout, c.Feed.CacheTimeout > 0},
		{"feed.breaker_interval", c.Feed.BreakerInterval, c.Feed.BreakerInterval > 0},
		{"feed.breaker_open_timeout", c.Feed.BreakerOpenTimeout, c.Feed.BreakerOpenTimeout > 0},
	}
	for _, t := range timeouts {
		if !t.ok {
			return fmt.Errorf("%w: %s got %v", ErrInvalidTimeout, t.name, t.value)
		}
	}

	if c.Feed.Concurrency <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidConcurrency, c.Feed.Concurrency)
	}
	if c.Feed.RefreshLimit < 1 || c.Feed.RefreshLimit > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidRefreshLimit, c.Feed.RefreshLimit)
	}
	if c.Feed.BreakerMinRequests == 0 || c.Feed.BreakerFailureRatio <= 0 || c.Feed.BreakerFailureRatio > 1 {
		return fmt.Errorf("%w: ratio %v, min requests %d",
			ErrInvalidBreaker, c.Feed.BreakerFailureRatio, c.Feed.BreakerMinRequests)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogFormat, c.Logging.Format)
	}
	return nil
}
