// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package eventprocessor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/adaptrank/internal/ranking/feedback"
	"github.com/tomtom215/adaptrank/internal/resilience"
)

// Publisher publishes feedback events behind a circuit breaker.
type Publisher struct {
	publisher message.Publisher
	topic     string
	breaker   *resilience.Breaker[struct{}]
	mu        sync.RWMutex
	closed    bool
}

// NewPublisher creates a JetStream publisher connected to url. Message ids
// are tracked so the stream's duplicate window drops transport retries.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPublisher(url string, cfg PublisherConfig, wmLogger watermill.LoggerAdapter, logger zerolog.Logger) (*Publisher, error) {
	if wmLogger == nil {
		wmLogger = watermill.NopLogger{}
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				wmLogger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			wmLogger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false, // created by StreamInitializer
			TrackMsgId:    cfg.EnableTrackMsgID,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return NewPublisherFrom(pub, cfg.Topic, logger), nil
}

// NewPublisherFrom wraps an existing Watermill publisher.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPublisherFrom(pub message.Publisher, topic string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		publisher: pub,
		topic:     topic,
		breaker:   resilience.NewBreaker[struct{}](resilience.DefaultBreakerConfig("nats-publish"), logger),
	}
}

// Publish sends msg to topic. The message UUID doubles as Nats-Msg-Id
// unless one is already set.
func (p *Publisher) Publish(_ context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}

	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(topic, msg)
	})
	return err
}

// PublishFeedback encodes ev and publishes it to the feedback topic and
// returns its event id, assigning one when absent. Every call publishes a
// message with a fresh UUID and Nats-Msg-Id, so the same event published
// twice is applied twice. Only transport-level retries of one call share an
// id and collapse in the stream's duplicate window.
//
//nolint:gocritic // hugeParam: ev passed by value for immutability
func (p *Publisher) PublishFeedback(ctx context.Context, ev feedback.Event) (string, error) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	payload, err := feedback.Encode(ev)
	if err != nil {
		return "", fmt.Errorf("encode feedback: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(EventIDMetadataKey, ev.EventID)
	msg.Metadata.Set("action", ev.Action)
	msg.SetContext(ctx)

	if err := p.Publish(ctx, p.topic, msg); err != nil {
		return "", fmt.Errorf("publish feedback %s: %w", ev.EventID, err)
	}
	return ev.EventID, nil
}

// PoisonPublisher returns a publisher for the router's poison queue. Each
// message is republished under a fresh id: the original Nats-Msg-Id is
// still inside the stream's duplicate window and would be dropped.
func (p *Publisher) PoisonPublisher() message.Publisher {
	return &poisonPublisher{p: p}
}

type poisonPublisher struct {
	p *Publisher
}

// OriginalUUIDMetadataKey records the id of a dead-lettered message.
const OriginalUUIDMetadataKey = "original_uuid"

func (pp *poisonPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		out := message.NewMessage(watermill.NewUUID(), msg.Payload)
		for k, v := range msg.Metadata {
			out.Metadata.Set(k, v)
		}
		out.Metadata.Set(OriginalUUIDMetadataKey, msg.UUID)
		out.Metadata.Set(natsgo.MsgIdHdr, out.UUID)
		if err := pp.p.Publish(msg.Context(), topic, out); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the owning Publisher is closed separately.
func (pp *poisonPublisher) Close() error { return nil }

// Close closes the underlying publisher. Further publishes fail with
// ErrPublisherClosed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
