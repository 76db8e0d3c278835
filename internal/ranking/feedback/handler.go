// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package feedback

import (
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/adaptrank/internal/metrics"
)

// Handler consumes feedback messages from the event router.
//
// Malformed payloads and rejected events are acknowledged so they are not
// redelivered forever. Store failures are returned, which makes the router
// retry the message with backoff.
type Handler struct {
	ingester *Ingester
	logger   zerolog.Logger
}

// NewHandler creates a Handler feeding ingester.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(ingester *Ingester, logger zerolog.Logger) *Handler {
	return &Handler{
		ingester: ingester,
		logger:   logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// Handle implements message.NoPublishHandlerFunc.
func (h *Handler) Handle(msg *message.Message) error {
	start := time.Now()
	metrics.RecordNATSConsume()

	var ev Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		metrics.RecordNATSParseFailed()
		h.logger.Warn().Err(err).
			Str("message_uuid", msg.UUID).
			Msg("dropping malformed feedback message")
		return nil
	}

	if ev.EventID == "" {
		ev.EventID = msg.UUID
	}

	if _, err := h.ingester.Ingest(msg.Context(), ev); err != nil {
		if IsPermanent(err) {
			h.logger.Warn().Err(err).
				Str("event_id", ev.EventID).
				Str("item_id", ev.ItemID).
				Str("action", ev.Action).
				Msg("rejecting feedback event")
			return nil
		}
		return err
	}

	metrics.RecordNATSProcessingDuration(time.Since(start))
	return nil
}

// Encode serializes an event for publishing.
//
//nolint:gocritic // hugeParam: ev passed by value for immutability
func Encode(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}
