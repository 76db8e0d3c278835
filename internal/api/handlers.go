// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/adaptrank/internal/logging"
	"github.com/tomtom215/adaptrank/internal/ranking"
	"github.com/tomtom215/adaptrank/internal/ranking/bandit"
	"github.com/tomtom215/adaptrank/internal/ranking/feedback"
	"github.com/tomtom215/adaptrank/internal/validation"
)

// Ranker ranks candidate sets.
type Ranker interface {
	Rank(ctx context.Context, req ranking.Request) (*ranking.RankedResult, error)
	Stats() ranking.Stats
}

// FeedbackIngester applies feedback synchronously.
type FeedbackIngester interface {
	Ingest(ctx context.Context, ev feedback.Event) (feedback.Result, error)
}

// FeedbackPublisher hands feedback to the event stream.
type FeedbackPublisher interface {
	PublishFeedback(ctx context.Context, ev feedback.Event) (string, error)
}

// StatsSource exposes the latest bandit statistics snapshot.
type StatsSource interface {
	Latest() (bandit.Stats, bool)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// HandlerConfig holds the collaborators of a Handler. Publisher, Stats and
// HealthChecks are optional.
type HandlerConfig struct {
	Ranker       Ranker
	Ingester     FeedbackIngester
	Publisher    FeedbackPublisher
	Stats        StatsSource
	HealthChecks map[string]HealthCheck

	// HealthTimeout bounds all health checks together. Default: 2s.
	HealthTimeout time.Duration
}

// Handler serves the HTTP endpoints.
type Handler struct {
	ranker        Ranker
	ingester      FeedbackIngester
	publisher     FeedbackPublisher
	stats         StatsSource
	healthChecks  map[string]HealthCheck
	healthTimeout time.Duration
}

// NewHandler creates a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	timeout := cfg.HealthTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Handler{
		ranker:        cfg.Ranker,
		ingester:      cfg.Ingester,
		publisher:     cfg.Publisher,
		stats:         cfg.Stats,
		healthChecks:  cfg.HealthChecks,
		healthTimeout: timeout,
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Rank handles POST /api/v1/rank.
func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	result, err := h.ranker.Rank(r.Context(), req.ToRanking(logging.RequestIDFromContext(r.Context())))
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			respondError(w, r, http.StatusGatewayTimeout, CodeRequestTimeout, "Ranking timed out", err)
		case errors.Is(err, context.Canceled):
			// client went away; nothing useful to send
			respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Request canceled", nil)
		default:
			respondError(w, r, http.StatusInternalServerError, CodeInternal, "Ranking failed", err)
		}
		return
	}

	respondSuccess(w, r, http.StatusOK, result)
}

// Feedback handles POST /api/v1/feedback.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var ev feedback.Event
	if err := decodeJSON(w, r, &ev); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&ev); verr != nil {
		respondValidationError(w, r, verr)
		return
	}
	if _, err := feedback.ParseActionKind(ev.Action); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidAction, "Unknown action: "+sanitizeLogValue(ev.Action), nil)
		return
	}

	if h.publisher != nil {
		id, err := h.publisher.PublishFeedback(r.Context(), ev)
		if err != nil {
			respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Feedback stream unavailable", err)
			return
		}
		respondSuccess(w, r, http.StatusAccepted, &FeedbackAccepted{EventID: id, Status: "queued"})
		return
	}

	result, err := h.ingester.Ingest(r.Context(), ev)
	if err != nil {
		if feedback.IsPermanent(err) {
			respondError(w, r, http.StatusBadRequest, CodeValidation, "Feedback rejected", err)
			return
		}
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Bandit store unavailable", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, &result)
}

// BanditStats handles GET /api/v1/bandit/stats.
func (h *Handler) BanditStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Bandit statistics disabled", nil)
		return
	}
	stats, ok := h.stats.Latest()
	if !ok {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Bandit statistics not collected yet", nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, &stats)
}

// EngineStats handles GET /api/v1/ranking/stats.
func (h *Handler) EngineStats(w http.ResponseWriter, r *http.Request) {
	stats := h.ranker.Stats()
	respondSuccess(w, r, http.StatusOK, &stats)
}

// Health handles GET /healthz. Checks run concurrently; any failure
// answers 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.healthChecks))
	for name := range h.healthChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, check HealthCheck) {
			defer wg.Done()
			results[i] = check(ctx)
		}(i, h.healthChecks[name])
	}
	wg.Wait()

	status := HealthStatus{Status: "ok", Checks: make(map[string]string, len(names))}
	code := http.StatusOK
	for i, name := range names {
		if results[i] != nil {
			logging.Ctx(r.Context()).Warn().Err(results[i]).Str("check", name).Msg("health check failed")
			status.Checks[name] = "unavailable"
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status.Checks[name] = "ok"
	}
	respondJSON(w, code, &status)
}
