// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package eventprocessor

import (
	"fmt"
	"time"
)

// Config holds the feedback transport configuration.
type Config struct {
	// Enabled turns on the NATS feedback stream. When disabled, feedback is
	// only accepted through the HTTP endpoint and applied synchronously.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server connection URL. Ignored when Embedded is set.
	URL string `koanf:"url"`

	// Embedded starts an in-process NATS server with JetStream.
	Embedded bool `koanf:"embedded"`

	Server     ServerConfig     `koanf:"server"`
	Stream     StreamConfig     `koanf:"stream"`
	Subscriber SubscriberConfig `koanf:"subscriber"`
	Publisher  PublisherConfig  `koanf:"publisher"`
	Router     RouterConfig     `koanf:"router"`
}

// DefaultConfig returns the defaults for a single-instance deployment.
func DefaultConfig() Config {
	return Config{
		Enabled:    false,
		URL:        "nats://127.0.0.1:4222",
		Embedded:   true,
		Server:     DefaultServerConfig(),
		Stream:     DefaultStreamConfig(),
		Subscriber: DefaultSubscriberConfig(),
		Publisher:  DefaultPublisherConfig(),
		Router:     DefaultRouterConfig(),
	}
}

// Validate checks the configuration. A disabled transport is always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if !c.Embedded && c.URL == "" {
		return fmt.Errorf("%w: url is required without an embedded server", ErrInvalidConfig)
	}
	if c.Stream.Name == "" || len(c.Stream.Subjects) == 0 {
		return fmt.Errorf("%w: stream name and subjects are required", ErrInvalidConfig)
	}
	if c.Subscriber.Topic == "" {
		return fmt.Errorf("%w: subscriber topic is required", ErrInvalidConfig)
	}
	if c.Subscriber.DurableName == "" {
		return fmt.Errorf("%w: subscriber durable name is required", ErrInvalidConfig)
	}
	if c.Subscriber.SubscribersCount < 1 {
		return fmt.Errorf("%w: subscriber count must be at least 1, got %d", ErrInvalidConfig, c.Subscriber.SubscribersCount)
	}
	if c.Router.RetryMaxRetries < 0 {
		return fmt.Errorf("%w: router retry count must be non-negative", ErrInvalidConfig)
	}
	return nil
}

// ServerConfig holds embedded NATS server settings.
type ServerConfig struct {
	Host              string `koanf:"host"`
	Port              int    `koanf:"port"`
	StoreDir          string `koanf:"store_dir"`
	JetStreamMaxMem   int64  `koanf:"max_memory"`
	JetStreamMaxStore int64  `koanf:"max_store"`
}

// DefaultServerConfig returns defaults for the embedded NATS server.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "127.0.0.1",
		Port:              4222,
		StoreDir:          "/data/nats/jetstream",
		JetStreamMaxMem:   256 << 20, // 256MB
		JetStreamMaxStore: 4 << 30,   // 4GB
	}
}

// StreamConfig defines the feedback stream.
type StreamConfig struct {
	Name            string        `koanf:"name"`
	Subjects        []string      `koanf:"subjects"`
	MaxAge          time.Duration `koanf:"max_age"`
	MaxBytes        int64         `koanf:"max_bytes"`
	DuplicateWindow time.Duration `koanf:"duplicate_window"`
	Replicas        int           `koanf:"replicas"`
}

// DefaultStreamConfig returns the feedback stream defaults.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Name:            "RANKING_FEEDBACK",
		Subjects:        []string{"feedback.>"},
		MaxAge:          72 * time.Hour,
		MaxBytes:        1 << 30, // 1GB
		DuplicateWindow: 2 * time.Minute,
		Replicas:        1,
	}
}

// PublisherConfig holds publisher settings.
type PublisherConfig struct {
	Topic            string        `koanf:"topic"`
	MaxReconnects    int           `koanf:"max_reconnects"`
	ReconnectWait    time.Duration `koanf:"reconnect_wait"`
	ReconnectBuffer  int           `koanf:"reconnect_buffer"`
	EnableTrackMsgID bool          `koanf:"track_msg_id"` // nolint:revive // ID is correct per Go conventions
}

// DefaultPublisherConfig returns production defaults for the publisher.
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		Topic:            "feedback.events",
		MaxReconnects:    -1, // Unlimited
		ReconnectWait:    2 * time.Second,
		ReconnectBuffer:  8 * 1024 * 1024, // 8MB
		EnableTrackMsgID: true,
	}
}

// SubscriberConfig holds subscriber settings.
type SubscriberConfig struct {
	// Topic is the subject the feedback consumer subscribes to.
	Topic            string        `koanf:"topic"`
	DurableName      string        `koanf:"durable_name"`
	QueueGroup       string        `koanf:"queue_group"`
	SubscribersCount int           `koanf:"subscribers"`
	AckWaitTimeout   time.Duration `koanf:"ack_wait"`
	MaxDeliver       int           `koanf:"max_deliver"`
	MaxAckPending    int           `koanf:"max_ack_pending"`
	CloseTimeout     time.Duration `koanf:"close_timeout"`
	MaxReconnects    int           `koanf:"max_reconnects"`
	ReconnectWait    time.Duration `koanf:"reconnect_wait"`
}

// DefaultSubscriberConfig returns production defaults for the subscriber.
func DefaultSubscriberConfig() SubscriberConfig {
	return SubscriberConfig{
		Topic:            "feedback.events",
		DurableName:      "bandit-updater",
		QueueGroup:       "rankers",
		SubscribersCount: 4,
		AckWaitTimeout:   30 * time.Second,
		MaxDeliver:       5,
		MaxAckPending:    1000,
		CloseTimeout:     30 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
	}
}
