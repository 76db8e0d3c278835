// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/adaptrank/internal/api"
	"github.com/tomtom215/adaptrank/internal/catalog"
	"github.com/tomtom215/adaptrank/internal/config"
	"github.com/tomtom215/adaptrank/internal/database"
	"github.com/tomtom215/adaptrank/internal/logging"
	"github.com/tomtom215/adaptrank/internal/ranking"
	"github.com/tomtom215/adaptrank/internal/ranking/alternatives"
	"github.com/tomtom215/adaptrank/internal/ranking/reranking"
	"github.com/tomtom215/adaptrank/internal/ranking/scoring"
)

// signalSources holds the optional external collaborators of the engine.
// A nil field means the source is disabled.
type signalSources struct {
	db           *database.DB
	interactions *database.InteractionStore
	catalog      *catalog.QdrantCatalog
}

// openSources connects the sources enabled in cfg.Sources. On error every
// source opened so far is closed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func openSources(cfg *config.Config, logger zerolog.Logger) (*signalSources, error) {
	s := &signalSources{}

	if cfg.Sources.Interactions {
		db, err := database.New(cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("open interaction database: %w", err)
		}
		s.db = db
		s.interactions = database.NewInteractionStore(db)
		logging.Info().Str("path", cfg.Database.Path).Msg("Interaction store ready")
	} else {
		logging.Info().Msg("Interaction source disabled, collaborative signal uses its default")
	}

	if cfg.Sources.Catalog {
		cat, err := catalog.NewQdrantCatalog(cfg.Catalog, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		s.catalog = cat
		logging.Info().
			Str("addr", cfg.Catalog.Addr).
			Str("collection", cfg.Catalog.Collection).
			Msg("Catalog ready")
	}

	return s, nil
}

// HealthChecks returns a check per enabled source.
func (s *signalSources) HealthChecks() map[string]api.HealthCheck {
	checks := make(map[string]api.HealthCheck, 2)
	if s.db != nil {
		checks["interactions"] = s.db.Ping
	}
	if s.catalog != nil {
		checks["catalog"] = s.catalog.Ping
	}
	return checks
}

// Close closes every open source, logging failures.
func (s *signalSources) Close() {
	if s.catalog != nil {
		if err := s.catalog.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog")
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing interaction database")
		}
	}
}

// newEngine assembles the ranking engine from its scorers.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newEngine(cfg *config.Config, bandit ranking.BanditReader, sources *signalSources, logger zerolog.Logger) (*ranking.Engine, error) {
	relevance, err := scoring.NewRelevance(cfg.Relevance)
	if err != nil {
		return nil, fmt.Errorf("relevance scorer: %w", err)
	}

	deps := ranking.Dependencies{
		Bandit:    bandit,
		Relevance: relevance,
		Reranker:  reranking.NewDiversity(cfg.Ranking.Diversity),
	}

	// A nil source still yields a filter; it reports every score as
	// unavailable so the fallback is counted.
	var src scoring.InteractionSource
	if sources.interactions != nil {
		src = sources.interactions
	}
	deps.Collaborative = scoring.NewCollaborativeFilter(src, cfg.Ranking.Collaborative, logger)
	if sources.interactions != nil && cfg.Sources.RecordProfiles {
		deps.Profiles = sources.interactions
	}

	var lookup alternatives.CatalogLookup
	if sources.catalog != nil {
		lookup = sources.catalog
	}
	deps.Alternatives = alternatives.NewFinder(lookup, logger)

	engine, err := ranking.NewEngine(&cfg.Ranking, deps, logger)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("reranker", deps.Reranker.Name()).
		Int("window", cfg.Ranking.Diversity.WindowSize).
		Int("max_candidates", cfg.Ranking.Limits.MaxCandidates).
		Msg("Ranking engine ready")
	return engine, nil
}

// pingAll runs every check once, for the startup log.
func pingAll(ctx context.Context, checks map[string]api.HealthCheck) {
	for name, check := range checks {
		if err := check(ctx); err != nil {
			logging.Warn().Err(err).Str("source", name).Msg("Source not reachable at startup")
		}
	}
}
