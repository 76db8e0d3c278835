// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

// Package eventprocessor carries user feedback from producers to the bandit
// store over NATS JetStream, using Watermill for routing.
//
// # Flow
//
//	producer ──► Publisher ──► JetStream (RANKING_FEEDBACK) ──► Subscriber
//	                                                              │
//	                                                              ▼
//	                                    Router (recover, retry, dedup, DLQ)
//	                                                              │
//	                                                              ▼
//	                                                   feedback.Handler
//	                                                              │
//	                                                              ▼
//	                                                     bandit.Store
//
// The stream is created by StreamInitializer before the publisher and
// subscriber start. An EmbeddedServer can host JetStream in process for
// single-instance deployments.
//
// # Delivery
//
// Delivery is at least once. Each PublishFeedback call gets its own message
// UUID, sent as Nats-Msg-Id, so the stream's duplicate window only drops
// transport retries of that call. The Router skips broker redelivery of a
// UUID it already applied within DeduplicationTTL. Two publishes of the same
// event_id are separate messages and both move the posterior, matching the
// synchronous HTTP path.
//
// Messages that fail every retry are published to PoisonQueueTopic.
// Malformed payloads are acknowledged by the handler and never reach it.
package eventprocessor
