// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/adaptrank/internal/catalog"
	"github.com/tomtom215/adaptrank/internal/database"
	"github.com/tomtom215/adaptrank/internal/eventprocessor"
	"github.com/tomtom215/adaptrank/internal/logging"
	"github.com/tomtom215/adaptrank/internal/ranking"
	"github.com/tomtom215/adaptrank/internal/ranking/bandit"
	"github.com/tomtom215/adaptrank/internal/ranking/scoring"
)

// Config holds all application configuration.
type Config struct {
	Logging   logging.Config           `koanf:"logging"`
	Server    ServerConfig             `koanf:"server"`
	Ranking   ranking.Config           `koanf:"ranking"`
	Relevance scoring.RelevanceWeights `koanf:"relevance"`
	Bandit    BanditConfig             `koanf:"bandit"`
	Sources   SourcesConfig            `koanf:"sources"`
	Database  database.Config          `koanf:"database"`
	Catalog   catalog.Config           `koanf:"catalog"`
	Feedback  FeedbackConfig           `koanf:"feedback"`
	Events    eventprocessor.Config    `koanf:"events"`
}

// ServerConfig holds the operations HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists the origins allowed to call the API. Empty disables
	// CORS handling.
	CORSOrigins []string `koanf:"cors_origins"`

	// FeedbackRateLimit is the number of feedback requests allowed per IP
	// per minute (0 = unlimited).
	FeedbackRateLimit int `koanf:"feedback_rate_limit"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// BanditConfig selects the bandit state store and its statistics refresh.
type BanditConfig struct {
	Store bandit.BackendConfig `koanf:"store"`

	// StatsInterval is how often the aggregate bandit gauges are refreshed.
	StatsInterval time.Duration `koanf:"stats_interval"`
}

// SourcesConfig toggles the optional external signal sources. A disabled
// source makes its signal fall back to its default score.
type SourcesConfig struct {
	// Interactions enables the DuckDB profile and interaction store used by
	// the collaborative signal.
	Interactions bool `koanf:"interactions"`

	// RecordProfiles stores the user profile of each rank request in the
	// interaction store, which is where the collaborative signal finds
	// peers. Only used with Interactions.
	RecordProfiles bool `koanf:"record_profiles"`

	// Catalog enables the Qdrant catalog used to widen alternatives.
	Catalog bool `koanf:"catalog"`
}

// FeedbackConfig holds feedback ingestion settings.
type FeedbackConfig struct {
	// RatePerSecond bounds applied feedback events per second
	// (0 = unlimited).
	RatePerSecond float64 `koanf:"rate_per_second"`

	// Burst is the limiter burst size.
	Burst int `koanf:"burst"`

	// RecordInteractions appends accepted events to the interaction log when
	// the interaction source is enabled.
	RecordInteractions bool `koanf:"record_interactions"`
}

// defaultConfig returns a Config with every default applied. Defaults are
// loaded first, then overridden by the config file and the environment.
func defaultConfig() *Config {
	logCfg := logging.DefaultConfig()
	logCfg.Output = nil

	return &Config{
		Logging: logCfg,
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			FeedbackRateLimit: 600,
		},
		Ranking:   *ranking.DefaultConfig(),
		Relevance: scoring.DefaultRelevanceWeights(),
		Bandit: BanditConfig{
			Store: bandit.BackendConfig{
				Backend:   bandit.BackendMemory,
				KeyPrefix: "thompson:",
			},
			StatsInterval: 30 * time.Second,
		},
		Sources:  SourcesConfig{RecordProfiles: true},
		Database: database.DefaultConfig(),
		Catalog:  catalog.DefaultConfig(),
		Feedback: FeedbackConfig{
			RatePerSecond:      0,
			Burst:              100,
			RecordInteractions: true,
		},
		Events: eventprocessor.DefaultConfig(),
	}
}

// Default returns the default configuration, for tests and tooling.
func Default() *Config {
	return defaultConfig()
}
