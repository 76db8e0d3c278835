// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package eventprocessor

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Enabled", cfg.Enabled, false},
		{"URL", cfg.URL, "nats://127.0.0.1:4222"},
		{"Embedded", cfg.Embedded, true},
		{"Stream.Name", cfg.Stream.Name, "RANKING_FEEDBACK"},
		{"Stream.DuplicateWindow", cfg.Stream.DuplicateWindow, 2 * time.Minute},
		{"Subscriber.Topic", cfg.Subscriber.Topic, "feedback.events"},
		{"Subscriber.DurableName", cfg.Subscriber.DurableName, "bandit-updater"},
		{"Subscriber.SubscribersCount", cfg.Subscriber.SubscribersCount, 4},
		{"Publisher.Topic", cfg.Publisher.Topic, "feedback.events"},
		{"Router.PoisonQueueTopic", cfg.Router.PoisonQueueTopic, "feedback.dlq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, expected %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	enabled := func(mut func(*Config)) Config {
		cfg := DefaultConfig()
		cfg.Enabled = true
		mut(&cfg)
		return cfg
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled defaults", DefaultConfig(), false},
		{"disabled ignores bad values", func() Config {
			c := DefaultConfig()
			c.Subscriber.Topic = ""
			return c
		}(), false},
		{"enabled defaults", enabled(func(*Config) {}), false},
		{"external without url", enabled(func(c *Config) { c.Embedded = false; c.URL = "" }), true},
		{"embedded without url", enabled(func(c *Config) { c.URL = "" }), false},
		{"missing stream subjects", enabled(func(c *Config) { c.Stream.Subjects = nil }), true},
		{"missing topic", enabled(func(c *Config) { c.Subscriber.Topic = "" }), true},
		{"missing durable", enabled(func(c *Config) { c.Subscriber.DurableName = "" }), true},
		{"zero subscribers", enabled(func(c *Config) { c.Subscriber.SubscribersCount = 0 }), true},
		{"negative retries", enabled(func(c *Config) { c.Router.RetryMaxRetries = -1 }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
