// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/adaptrank/internal/api"
	"github.com/tomtom215/adaptrank/internal/config"
	"github.com/tomtom215/adaptrank/internal/logging"
	"github.com/tomtom215/adaptrank/internal/metrics"
	"github.com/tomtom215/adaptrank/internal/ranking/bandit"
	"github.com/tomtom215/adaptrank/internal/supervisor"
	"github.com/tomtom215/adaptrank/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logger := logging.Logger()
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("bandit_backend", cfg.Bandit.Store.Backend).
		Str("bandit_mode", string(cfg.Ranking.Bandit.Mode)).
		Bool("interactions", cfg.Sources.Interactions).
		Bool("catalog", cfg.Sources.Catalog).
		Bool("nats", cfg.Events.Enabled).
		Msg("Starting adaptrank")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bandit.Open(ctx, cfg.Bandit.Store, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open bandit store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing bandit store")
		}
	}()
	logging.Info().Str("backend", store.Name()).Msg("Bandit store ready")

	sources, err := openSources(cfg, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open signal sources")
	}
	defer sources.Close()
	pingAll(ctx, sources.HealthChecks())

	engine, err := newEngine(cfg, store, sources, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create ranking engine")
	}

	fb, err := initFeedback(ctx, cfg, store, sources, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize feedback")
	}
	defer fb.Close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	statsService := services.NewBanditStatsService(store, cfg.Bandit.StatsInterval, logger)
	tree.AddStateService(statsService)

	fb.AddToSupervisor(tree, logger)

	healthChecks := map[string]api.HealthCheck{"bandit": store.Ping}
	for name, check := range sources.HealthChecks() {
		healthChecks[name] = check
	}

	handler := api.NewHandler(api.HandlerConfig{
		Ranker:       engine,
		Ingester:     fb.Ingester,
		Publisher:    fb.PublisherOrNil(),
		Stats:        statsService,
		HealthChecks: healthChecks,
	})

	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwConfig.FeedbackRequests = cfg.Server.FeedbackRateLimit

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, mwConfig),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	if report, err := tree.UnstoppedServiceReport(); err != nil {
		logging.Warn().Err(err).Msg("Failed to build unstopped service report")
	} else if len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	logging.Info().Msg("Shutdown complete")
}
