// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package bandit

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// BackendConfig selects and configures a backend.
type BackendConfig struct {
	// Backend is memory, badger or redis.
	Backend string `koanf:"backend" validate:"oneof=memory badger redis"`

	// KeyPrefix prefixes item keys in badger and redis.
	KeyPrefix string `koanf:"key_prefix"`

	// BadgerPath is the data directory. Empty means in-memory.
	BadgerPath string `koanf:"badger_path"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
}

// Open creates the configured backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(ctx context.Context, cfg BackendConfig, logger zerolog.Logger) (Backend, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendBadger:
		return OpenBadgerStore(cfg.BadgerPath, cfg.KeyPrefix, logger)
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("bandit backend redis requires redis_addr")
		}
		return OpenRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.KeyPrefix)
	default:
		return nil, fmt.Errorf("unknown bandit backend %q", cfg.Backend)
	}
}
