// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package eventprocessor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/adaptrank/internal/cache"
)

// EventIDMetadataKey carries the producer's event id for log correlation.
// It is never a deduplication key: two events with the same id both count.
const EventIDMetadataKey = "event_id"

// RouterConfig holds configuration for the feedback Router.
type RouterConfig struct {
	CloseTimeout time.Duration `koanf:"close_timeout"`

	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
	RetryMultiplier      float64       `koanf:"retry_multiplier"`

	// ThrottlePerSecond limits handled messages per second (0 = disabled).
	ThrottlePerSecond int64 `koanf:"throttle_per_second"`

	// PoisonQueueTopic receives messages that failed every retry.
	PoisonQueueTopic string `koanf:"poison_queue_topic"`

	DeduplicationEnabled bool          `koanf:"dedup_enabled"`
	DeduplicationTTL     time.Duration `koanf:"dedup_ttl"`
	DeduplicationSize    int           `koanf:"dedup_size"`
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      5,
		RetryInitialInterval: 500 * time.Millisecond,
		RetryMaxInterval:     30 * time.Second,
		RetryMultiplier:      2.0,
		ThrottlePerSecond:    0,
		PoisonQueueTopic:     "feedback.dlq",
		DeduplicationEnabled: true,
		DeduplicationTTL:     5 * time.Minute,
		DeduplicationSize:    10000,
	}
}

// Router wraps the Watermill Router with the feedback middleware stack:
// throttling, poison queue routing, redelivery deduplication, retry with
// backoff and panic recovery.
type Router struct {
	router    *message.Router
	config    RouterConfig
	logger    watermill.LoggerAdapter
	running   atomic.Bool
	handlers  map[string]*message.Handler
	dedupRepo *EventDeduplicator
}

// EventDeduplicator remembers handled message UUIDs in an LRU with expiry.
// It suppresses broker redelivery of a message that was already applied.
// Separately published events always get distinct UUIDs.
type EventDeduplicator struct {
	seen *cache.LRU[string, struct{}]
}

// NewEventDeduplicator creates a deduplicator remembering up to size keys
// for ttl.
func NewEventDeduplicator(size int, ttl time.Duration) *EventDeduplicator {
	return &EventDeduplicator{
		seen: cache.NewLRU[string, struct{}]("feedback_dedup", size, ttl),
	}
}

// Seen reports whether key was handled within the TTL.
func (d *EventDeduplicator) Seen(key string) bool {
	_, ok := d.seen.Get(key)
	return ok
}

// Mark records key as handled.
func (d *EventDeduplicator) Mark(key string) {
	d.seen.Add(key, struct{}{})
}

// Middleware skips messages whose UUID was already handled. A key is only
// marked after the handler succeeds, so a failed message stays eligible for
// redelivery.
func (d *EventDeduplicator) Middleware(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		if d.Seen(msg.UUID) {
			return nil, nil
		}
		out, err := h(msg)
		if err == nil {
			d.Mark(msg.UUID)
		}
		return out, err
	}
}

// NewRouter creates a Watermill Router with the middleware stack applied in
// order (outer to inner): Throttle, PoisonQueue, deduplication, Retry and
// Recoverer. poisonPublisher may be nil to disable the poison queue.
func NewRouter(
	cfg *RouterConfig,
	poisonPublisher message.Publisher,
	logger watermill.LoggerAdapter,
) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	if cfg == nil {
		defaultCfg := DefaultRouterConfig()
		cfg = &defaultCfg
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{
		router:   wmRouter,
		config:   *cfg,
		logger:   logger,
		handlers: make(map[string]*message.Handler),
	}

	if cfg.ThrottlePerSecond > 0 {
		throttle := middleware.NewThrottle(cfg.ThrottlePerSecond, time.Second)
		wmRouter.AddMiddleware(throttle.Middleware)
	}

	if poisonPublisher != nil && cfg.PoisonQueueTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(poisonPublisher, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poisonQueue)
	}

	if cfg.DeduplicationEnabled {
		size := cfg.DeduplicationSize
		if size <= 0 {
			size = DefaultRouterConfig().DeduplicationSize
		}
		r.dedupRepo = NewEventDeduplicator(size, cfg.DeduplicationTTL)
		wmRouter.AddMiddleware(r.dedupRepo.Middleware)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	// Innermost, so a panic becomes an error the retry can see.
	wmRouter.AddMiddleware(middleware.Recoverer)

	return r, nil
}

// AddConsumerHandler registers a handler that produces no output messages.
// A returned error triggers the retry middleware; a message that still
// fails goes to the poison queue.
func (r *Router) AddConsumerHandler(
	name string,
	subscribeTopic string,
	subscriber message.Subscriber,
	handler message.NoPublishHandlerFunc,
) *message.Handler {
	h := r.router.AddConsumerHandler(name, subscribeTopic, subscriber, handler)
	r.handlers[name] = h
	return h
}

// Run starts the router and blocks until context cancellation or Close.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// RunAsync starts the router in a goroutine. The returned channel is closed
// once the router is running.
func (r *Router) RunAsync(ctx context.Context) <-chan struct{} {
	go func() {
		if err := r.Run(ctx); err != nil {
			r.logger.Error("Router error", err, nil)
		}
	}()
	return r.router.Running()
}

// Running returns a channel that closes when the router is running.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close gracefully stops the router, waiting up to CloseTimeout for
// in-flight messages.
func (r *Router) Close() error {
	return r.router.Close()
}

// IsRunning reports whether the router is processing messages.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// HandlerCount returns the number of registered handlers.
func (r *Router) HandlerCount() int {
	return len(r.handlers)
}
