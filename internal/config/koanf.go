// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

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

// DefaultConfigPaths lists the config file locations, in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/adaptrank/config.yaml",
	"/etc/adaptrank/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load reads configuration in three layers, later layers winning:
// struct defaults, the YAML config file (optional) and environment
// variables. The result is validated.
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
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

// findConfigFile returns CONFIG_PATH when it exists, else the first
// existing default path, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set through
// the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"events.stream.subjects",
}

// processSliceFields converts comma-separated string values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
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

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak
// into the configuration.
var envMappings = map[string]string{
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"feedback_rate_limit":   "server.feedback_rate_limit",

	"ranking_bandit_mode":     "ranking.bandit.mode",
	"ranking_seed":            "ranking.bandit.seed",
	"ranking_window_size":     "ranking.diversity.window_size",
	"ranking_noise_fraction":  "ranking.diversity.noise_fraction",
	"ranking_signal_timeout":  "ranking.limits.signal_timeout",
	"ranking_request_timeout": "ranking.limits.request_timeout",
	"ranking_max_candidates":  "ranking.limits.max_candidates",

	"bandit_backend":        "bandit.store.backend",
	"bandit_key_prefix":     "bandit.store.key_prefix",
	"bandit_badger_path":    "bandit.store.badger_path",
	"redis_addr":            "bandit.store.redis_addr",
	"redis_password":        "bandit.store.redis_password",
	"redis_db":              "bandit.store.redis_db",
	"bandit_stats_interval": "bandit.stats_interval",

	"enable_interactions": "sources.interactions",
	"enable_catalog":      "sources.catalog",
	"record_profiles":     "sources.record_profiles",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"qdrant_addr":          "catalog.addr",
	"qdrant_api_key":       "catalog.api_key",
	"qdrant_use_tls":       "catalog.use_tls",
	"qdrant_collection":    "catalog.collection",
	"qdrant_in_stock_only": "catalog.in_stock_only",

	"feedback_rate_per_second": "feedback.rate_per_second",
	"feedback_burst":           "feedback.burst",

	"nats_enabled":        "events.enabled",
	"nats_url":            "events.url",
	"nats_embedded":       "events.embedded",
	"nats_store_dir":      "events.server.store_dir",
	"nats_stream":         "events.stream.name",
	"nats_subjects":       "events.stream.subjects",
	"nats_topic":          "events.subscriber.topic",
	"nats_durable_name":   "events.subscriber.durable_name",
	"nats_queue_group":    "events.subscriber.queue_group",
	"nats_subscribers":    "events.subscriber.subscribers",
	"nats_publish_topic":  "events.publisher.topic",
	"nats_dlq_topic":      "events.router.poison_queue_topic",
	"nats_retry_max":      "events.router.retry_max_retries",
	"nats_throttle_per_s": "events.router.throttle_per_second",
}

// envTransformFunc maps an environment variable name to its koanf path,
// or "" to skip it.
//
//   - HTTP_PORT -> server.port
//   - BANDIT_BACKEND -> bandit.store.backend
//   - NATS_ENABLED -> events.enabled
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
