// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/adaptrank/internal/logging"
	"github.com/tomtom215/adaptrank/internal/validation"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.Ranking.Validate(); err != nil {
		return fmt.Errorf("ranking: %w", err)
	}
	if err := c.Relevance.Validate(); err != nil {
		return err
	}
	if err := c.validateBandit(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateFeedback(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a known level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP read and write timeouts must be positive")
	}
	if c.Server.FeedbackRateLimit < 0 {
		return fmt.Errorf("FEEDBACK_RATE_LIMIT must be non-negative, got %d", c.Server.FeedbackRateLimit)
	}
	return nil
}

func (c *Config) validateBandit() error {
	if verr := validation.ValidateStruct(&c.Bandit.Store); verr != nil {
		return fmt.Errorf("bandit store: %w", verr)
	}
	if c.Bandit.Store.Backend == "redis" && c.Bandit.Store.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when BANDIT_BACKEND=redis")
	}
	if c.Bandit.StatsInterval <= 0 {
		return fmt.Errorf("bandit.stats_interval must be positive, got %v", c.Bandit.StatsInterval)
	}
	return nil
}

// validateSources only checks the settings of enabled sources.
func (c *Config) validateSources() error {
	if c.Sources.Interactions {
		if verr := validation.ValidateStruct(&c.Database); verr != nil {
			return fmt.Errorf("database: %w", verr)
		}
	}
	if c.Sources.Catalog {
		if verr := validation.ValidateStruct(&c.Catalog); verr != nil {
			return fmt.Errorf("catalog: %w", verr)
		}
		if c.Catalog.Addr == "" {
			return fmt.Errorf("QDRANT_ADDR is required when ENABLE_CATALOG=true")
		}
	}
	return nil
}

func (c *Config) validateFeedback() error {
	if c.Feedback.RatePerSecond < 0 {
		return fmt.Errorf("feedback.rate_per_second must be non-negative, got %f", c.Feedback.RatePerSecond)
	}
	if c.Feedback.RatePerSecond > 0 && c.Feedback.Burst < 1 {
		return fmt.Errorf("feedback.burst must be at least 1 when rate limiting, got %d", c.Feedback.Burst)
	}
	return nil
}
