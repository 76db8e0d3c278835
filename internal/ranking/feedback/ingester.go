// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/adaptrank/internal/metrics"
	"github.com/tomtom215/adaptrank/internal/ranking"
	"github.com/tomtom215/adaptrank/internal/ranking/bandit"
	"github.com/tomtom215/adaptrank/internal/validation"
)

// ErrInvalidEvent marks an event that failed validation.
var ErrInvalidEvent = errors.New("invalid feedback event")

// Event is one user interaction with an item.
type Event struct {
	// EventID is an optional producer identifier for correlation in logs,
	// API responses and dead letters. Events sharing an id are not merged.
	EventID string `json:"event_id,omitempty" validate:"max=128"`

	ItemID string `json:"item_id" validate:"required,max=256"`
	UserID string `json:"user_id,omitempty" validate:"max=256"`
	Action string `json:"action" validate:"required,max=32"`

	// Rating is an optional explicit rating (0-5) recorded for the
	// collaborative filter.
	Rating *float64 `json:"rating,omitempty" validate:"omitempty,finite,gte=0,lte=5"`

	// OccurredAt defaults to the ingestion time.
	OccurredAt time.Time `json:"occurred_at,omitempty"`
}

// InteractionRecorder appends accepted events to the interaction log.
type InteractionRecorder interface {
	RecordInteraction(ctx context.Context, in ranking.Interaction) error
}

// Result describes an applied event.
type Result struct {
	Action ActionKind          `json:"action"`
	Delta  float64             `json:"delta"`
	State  ranking.BanditState `json:"state"`
}

// Ingester validates events and applies them to the bandit store.
// It is safe for concurrent use.
type Ingester struct {
	store    bandit.Store
	recorder InteractionRecorder
	limiter  *rate.Limiter
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithRecorder records every applied event.
func WithRecorder(r InteractionRecorder) Option {
	return func(i *Ingester) { i.recorder = r }
}

// WithLimiter bounds the rate of store updates. Callers block until a token
// is available or their context ends.
func WithLimiter(l *rate.Limiter) Option {
	return func(i *Ingester) { i.limiter = l }
}

// NewIngester creates an Ingester writing to store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewIngester(store bandit.Store, logger zerolog.Logger, opts ...Option) *Ingester {
	i := &Ingester{
		store:  store,
		logger: logger.With().Str("component", "feedback").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Ingest applies one event. Exactly one store update happens for each
// accepted event; rejected events touch nothing. A failure to record the
// interaction is logged but not returned, since the update already applied.
//
//nolint:gocritic // hugeParam: ev passed by value for immutability
func (i *Ingester) Ingest(ctx context.Context, ev Event) (Result, error) {
	if verr := validation.ValidateStruct(&ev); verr != nil {
		metrics.RecordFeedback("unknown", "invalid")
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidEvent, verr.Error())
	}

	kind, err := ParseActionKind(ev.Action)
	if err != nil {
		metrics.RecordFeedback("unknown", "invalid")
		return Result{}, err
	}

	if i.limiter != nil {
		if err := i.limiter.Wait(ctx); err != nil {
			metrics.RecordFeedback(string(kind), "error")
			return Result{}, fmt.Errorf("wait for ingest limiter: %w", err)
		}
	}

	delta := kind.Weight()
	state, err := i.store.ApplyUpdate(ctx, ranking.ItemID(ev.ItemID), delta)
	if err != nil {
		metrics.RecordFeedback(string(kind), "error")
		return Result{}, fmt.Errorf("apply %s to %s: %w", kind, ev.ItemID, err)
	}
	metrics.RecordFeedback(string(kind), "applied")

	i.record(ctx, ev, kind)

	i.logger.Debug().
		Str("event_id", ev.EventID).
		Str("item_id", ev.ItemID).
		Str("action", string(kind)).
		Float64("delta", delta).
		Float64("success", state.Success).
		Float64("failure", state.Failure).
		Msg("feedback applied")

	return Result{Action: kind, Delta: delta, State: state}, nil
}

//nolint:gocritic // hugeParam: ev passed by value for immutability
func (i *Ingester) record(ctx context.Context, ev Event, kind ActionKind) {
	if i.recorder == nil || ev.UserID == "" {
		return
	}

	occurred := ev.OccurredAt
	if occurred.IsZero() {
		occurred = i.now()
	}

	err := i.recorder.RecordInteraction(ctx, ranking.Interaction{
		ItemID:     ranking.ItemID(ev.ItemID),
		UserID:     ranking.UserID(ev.UserID),
		Action:     string(kind),
		Rating:     ev.Rating,
		OccurredAt: occurred,
	})
	if err != nil {
		metrics.FeedbackRecordErrors.Inc()
		i.logger.Warn().Err(err).
			Str("item_id", ev.ItemID).
			Str("user_id", ev.UserID).
			Msg("failed to record interaction")
	}
}

// IsPermanent reports whether retrying the event cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrInvalidEvent) ||
		errors.Is(err, ranking.ErrInvalidActionKind) ||
		errors.Is(err, bandit.ErrInvalidDelta) ||
		errors.Is(err, bandit.ErrEmptyItemID)
}
