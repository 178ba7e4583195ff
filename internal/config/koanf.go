package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envMappings maps conventional environment variable names onto config paths
var envMappings = map[string]string{
	"port":           "server.port",
	"cors_origins":   "server.cors_origins",
	"database_url":   "database.url",
	"migrations_dir": "database.migrations_dir",
	"log_level":      "logging.level",
	"log_format":     "logging.format",
}

// sectionPrefixes are the env prefixes mapped as SECTION_KEY -> section.key
var sectionPrefixes = []string{"server", "database", "cache", "feed", "identity", "logging"}

// sliceConfigPaths are parsed from comma-separated strings
var sliceConfigPaths = []string{"server.cors_origins"}

// Load builds the configuration: struct defaults, then the YAML file named
// by CONFIG_PATH (if set), then environment variables. The result is validated.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envTransformFunc maps an environment variable name to a config path.
// Unrelated variables map to "" and are ignored.
//
//	PORT                -> server.port
//	DATABASE_URL        -> database.url
//	FEED_SOURCE_TIMEOUT -> feed.source_timeout
//	CACHE_IN_MEMORY     -> cache.in_memory
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if path, ok := envMappings[key]; ok {
		return path
	}

	for _, section := range sectionPrefixes {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok && rest != "" {
			return section + "." + rest
		}
	}

	return ""
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
