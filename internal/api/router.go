// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/adaptrank/internal/middleware"
)

// NewRouter builds the chi router.
//
// Global middleware order:
//  1. RequestID - accepted or generated ID, propagated to logs
//  2. PrometheusMetrics - per-route counters and latency
//  3. RealIP - client IP for rate limiting
//  4. Recoverer - panics answer 500
//  5. CORS
func NewRouter(h *Handler, mwConfig *ChiMiddlewareConfig) http.Handler {
	mw := NewChiMiddleware(mwConfig)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.Post("/rank", h.Rank)
		r.With(mw.RateLimitFeedback()).Post("/feedback", h.Feedback)

		r.Get("/bandit/stats", h.BanditStats)
		r.Get("/ranking/stats", h.EngineStats)
	})

	return r
}
