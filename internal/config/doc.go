// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

/*
Package config loads the server configuration with koanf.

# Sources

Configuration is layered, later layers winning:

 1. Struct defaults (defaultConfig)
 2. A YAML file: CONFIG_PATH, else config.yaml, config.yml,
    /etc/adaptrank/config.yaml or /etc/adaptrank/config.yml
 3. Environment variables, through an explicit name mapping

# Environment Variables

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json, console (default: json)

HTTP Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8080)
  - CORS_ORIGINS: comma-separated allowed origins
  - FEEDBACK_RATE_LIMIT: feedback requests per IP per minute (default: 600)

Ranking:
  - RANKING_BANDIT_MODE: sample or mean (default: sample)
  - RANKING_SEED: fixed generator seed, 0 seeds from the clock
  - RANKING_WINDOW_SIZE, RANKING_NOISE_FRACTION
  - RANKING_SIGNAL_TIMEOUT, RANKING_REQUEST_TIMEOUT

Bandit Store:
  - BANDIT_BACKEND: memory, badger or redis (default: memory)
  - BANDIT_KEY_PREFIX (default: thompson:)
  - BANDIT_BADGER_PATH, REDIS_ADDR, REDIS_PASSWORD, REDIS_DB

Signal Sources:
  - ENABLE_INTERACTIONS with DUCKDB_PATH, DUCKDB_MAX_MEMORY
  - RECORD_PROFILES: store rank request profiles for peer lookup (default: true)
  - ENABLE_CATALOG with QDRANT_ADDR, QDRANT_COLLECTION, QDRANT_API_KEY

Feedback Stream:
  - NATS_ENABLED, NATS_URL, NATS_EMBEDDED, NATS_STORE_DIR
  - NATS_STREAM, NATS_SUBJECTS, NATS_TOPIC, NATS_DURABLE_NAME
  - NATS_DLQ_TOPIC, NATS_RETRY_MAX

Every setting is also reachable from the YAML file by its koanf path, for
example ranking.weights.bandit or events.router.dedup_ttl.
*/
package config
