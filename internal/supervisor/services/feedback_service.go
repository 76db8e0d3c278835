// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// FeedbackRouter matches the lifecycle of eventprocessor.Router.
type FeedbackRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// FeedbackRouterFactory builds a fresh router with its handlers registered.
// A Watermill router cannot be run twice, so every restart builds a new one.
type FeedbackRouterFactory func() (FeedbackRouter, error)

// FeedbackConsumerService runs the feedback stream consumer that applies
// events to the bandit store.
type FeedbackConsumerService struct {
	factory FeedbackRouterFactory
	logger  zerolog.Logger
	name    string
}

// NewFeedbackConsumerService creates the consumer service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFeedbackConsumerService(factory FeedbackRouterFactory, logger zerolog.Logger) *FeedbackConsumerService {
	return &FeedbackConsumerService{
		factory: factory,
		logger:  logger.With().Str("service", "feedback-consumer").Logger(),
		name:    "feedback-consumer",
	}
}

// Serve implements suture.Service. A router that exits before the context
// is canceled is reported as a failure so suture restarts it.
func (s *FeedbackConsumerService) Serve(ctx context.Context) error {
	router, err := s.factory()
	if err != nil {
		return fmt.Errorf("build feedback router: %w", err)
	}
	defer func() {
		if cerr := router.Close(); cerr != nil {
			s.logger.Warn().Err(cerr).Msg("feedback router close failed")
		}
	}()

	s.logger.Info().Msg("feedback consumer starting")
	runErr := router.Run(ctx)

	if ctx.Err() != nil {
		s.logger.Info().Msg("feedback consumer shutting down")
		return ctx.Err()
	}
	if runErr != nil {
		return fmt.Errorf("feedback router stopped: %w", runErr)
	}
	return fmt.Errorf("feedback router stopped unexpectedly")
}

// String implements fmt.Stringer for suture logging.
func (s *FeedbackConsumerService) String() string {
	return s.name
}
