// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

/*
Package services provides suture.Service wrappers for the ranking server.

Each wrapper turns a component's own lifecycle (ListenAndServe/Shutdown,
Run/Close, a ticker loop) into suture's context-aware Serve:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning ctx.Err() after cancellation tells suture the stop was requested.
Any other return is a failure and the service is restarted with backoff.

# Services

HTTPServerService wraps the operations *http.Server and drains it on
shutdown.

NATSServerService owns the shutdown of the embedded NATS server and fails
if the server stops on its own.

FeedbackConsumerService builds a feedback router from a factory on every
start, runs it and closes it. Watermill routers cannot be restarted, hence
the factory.

BanditStatsService aggregates the bandit store on an interval, publishes
Prometheus gauges and keeps the latest snapshot for the stats endpoint.
*/
package services
