// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/adaptrank/internal/api"
	"github.com/tomtom215/adaptrank/internal/config"
	"github.com/tomtom215/adaptrank/internal/eventprocessor"
	"github.com/tomtom215/adaptrank/internal/logging"
	"github.com/tomtom215/adaptrank/internal/ranking/bandit"
	"github.com/tomtom215/adaptrank/internal/ranking/feedback"
	"github.com/tomtom215/adaptrank/internal/supervisor"
	"github.com/tomtom215/adaptrank/internal/supervisor/services"
)

// feedbackHandlerName names the consumer handler in router logs and metrics.
const feedbackHandlerName = "feedback-bandit-updater"

// FeedbackComponents holds the feedback path. Without NATS only Ingester
// is set and the HTTP handler applies events synchronously.
type FeedbackComponents struct {
	Ingester *feedback.Ingester

	server    *eventprocessor.EmbeddedServer
	conn      *natsgo.Conn
	publisher *eventprocessor.Publisher
	natsURL   string
	events    eventprocessor.Config
}

// initFeedback builds the ingester and, when events are enabled, the NATS
// transport: embedded server, stream and publisher. The consumer router is
// built later by the supervised service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initFeedback(ctx context.Context, cfg *config.Config, store bandit.Store, sources *signalSources, logger zerolog.Logger) (*FeedbackComponents, error) {
	var opts []feedback.Option
	if cfg.Feedback.RatePerSecond > 0 {
		opts = append(opts, feedback.WithLimiter(rate.NewLimiter(rate.Limit(cfg.Feedback.RatePerSecond), cfg.Feedback.Burst)))
	}
	if cfg.Feedback.RecordInteractions && sources.interactions != nil {
		opts = append(opts, feedback.WithRecorder(sources.interactions))
	}

	fc := &FeedbackComponents{
		Ingester: feedback.NewIngester(store, logger, opts...),
		events:   cfg.Events,
	}

	if !cfg.Events.Enabled {
		logging.Info().Msg("NATS feedback stream disabled, feedback is applied synchronously")
		return fc, nil
	}

	if err := fc.initNATS(ctx, logger); err != nil {
		fc.Close()
		return nil, err
	}
	return fc, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (fc *FeedbackComponents) initNATS(ctx context.Context, logger zerolog.Logger) error {
	fc.natsURL = fc.events.URL
	if fc.events.Embedded {
		server, err := eventprocessor.NewEmbeddedServer(&fc.events.Server)
		if err != nil {
			return fmt.Errorf("start embedded NATS: %w", err)
		}
		fc.server = server
		fc.natsURL = server.ClientURL()
		logging.Info().Str("url", fc.natsURL).Msg("Embedded NATS server started")
	} else {
		logging.Info().Str("url", fc.natsURL).Msg("Using external NATS server")
	}

	nc, err := natsgo.Connect(fc.natsURL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	fc.conn = nc

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	initializer, err := eventprocessor.NewStreamInitializer(js, &fc.events.Stream)
	if err != nil {
		return fmt.Errorf("create stream initializer: %w", err)
	}

	sctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	stream, err := initializer.EnsureStream(sctx)
	if err != nil {
		return fmt.Errorf("ensure stream: %w", err)
	}
	info := stream.CachedInfo()
	logging.Info().
		Str("name", info.Config.Name).
		Strs("subjects", info.Config.Subjects).
		Dur("max_age", info.Config.MaxAge).
		Msg("JetStream stream ready")

	publisher, err := eventprocessor.NewPublisher(
		fc.natsURL,
		fc.events.Publisher,
		logging.NewWatermillAdapter(logger.With().Str("component", "nats-publisher").Logger()),
		logger,
	)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	fc.publisher = publisher
	logging.Info().Str("topic", fc.events.Publisher.Topic).Msg("Feedback publisher ready")
	return nil
}

// PublisherOrNil returns the publisher as the API's optional collaborator.
// A typed nil must not reach the handler.
func (fc *FeedbackComponents) PublisherOrNil() api.FeedbackPublisher {
	if fc.publisher == nil {
		return nil
	}
	return fc.publisher
}

// AddToSupervisor registers the embedded server and the consumer in the
// feedback layer. It does nothing without NATS.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (fc *FeedbackComponents) AddToSupervisor(tree *supervisor.SupervisorTree, logger zerolog.Logger) {
	if fc.publisher == nil {
		return
	}
	if fc.server != nil {
		tree.AddFeedbackService(services.NewNATSServerService(fc.server, 10*time.Second))
	}
	tree.AddFeedbackService(services.NewFeedbackConsumerService(fc.routerFactory(logger), logger))
	logging.Info().
		Str("topic", fc.events.Subscriber.Topic).
		Str("durable", fc.events.Subscriber.DurableName).
		Msg("Feedback consumer added to supervisor")
}

// routerFactory builds a fresh subscriber and router for each run of the
// consumer service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (fc *FeedbackComponents) routerFactory(logger zerolog.Logger) services.FeedbackRouterFactory {
	handler := feedback.NewHandler(fc.Ingester, logger)
	wmLogger := logging.NewWatermillAdapter(logger.With().Str("component", "feedback-router").Logger())

	return func() (services.FeedbackRouter, error) {
		sub, err := eventprocessor.NewSubscriber(fc.natsURL, fc.events.Stream.Name, &fc.events.Subscriber, wmLogger)
		if err != nil {
			return nil, err
		}

		var poison message.Publisher
		if fc.events.Router.PoisonQueueTopic != "" {
			poison = fc.publisher.PoisonPublisher()
		}

		router, err := eventprocessor.NewRouter(&fc.events.Router, poison, wmLogger)
		if err != nil {
			_ = sub.Close()
			return nil, err
		}
		router.AddConsumerHandler(feedbackHandlerName, fc.events.Subscriber.Topic, sub, handler.Handle)

		return &consumerRouter{Router: router, sub: sub}, nil
	}
}

// consumerRouter closes its subscriber with the router.
type consumerRouter struct {
	*eventprocessor.Router
	sub *eventprocessor.Subscriber
}

func (r *consumerRouter) Close() error {
	return errors.Join(r.Router.Close(), r.sub.Close())
}

// Close releases the publisher, the connection and the embedded server.
// The supervised server service normally shuts the server down first.
func (fc *FeedbackComponents) Close() {
	if fc.publisher != nil {
		if err := fc.publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing feedback publisher")
		}
	}
	if fc.conn != nil {
		fc.conn.Close()
	}
	if fc.server != nil && fc.server.IsRunning() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fc.server.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("Error shutting down embedded NATS")
		}
	}
}
