// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

// Package feedback turns user interaction events into bandit updates.
//
// Each accepted event applies exactly one update to the bandit store with
// the reward of its action:
//
//	purchase   +1.0
//	like/save  +0.5
//	click      +0.2
//	view        0.0 (creates state at the prior)
//	dismiss    -0.3 (also skip, dislike)
//
// The pipeline does not deduplicate: a delivered duplicate is counted twice.
// Events with unknown actions or malformed payloads are rejected without
// touching the store. When an InteractionRecorder is configured the event is
// also appended to the interaction log the collaborative filter reads.
//
// Events arrive either from NATS JetStream through Handler (a watermill
// consumer) or directly through Ingester.Ingest.
package feedback
