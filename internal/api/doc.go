// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

/*
Package api serves the ranking server's HTTP interface on a chi router.

# Endpoints

	GET  /healthz                 bandit store (and enabled sources) reachability
	GET  /metrics                 Prometheus exposition
	POST /api/v1/rank             rank a candidate set
	POST /api/v1/feedback         submit one feedback event
	GET  /api/v1/bandit/stats     latest aggregate bandit statistics
	GET  /api/v1/ranking/stats    cumulative engine counters

# Responses

Every /api/v1 response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "VALIDATION_ERROR", "message": "..."}}

# Feedback Delivery

When the NATS feedback stream is enabled, POST /api/v1/feedback validates
the event, publishes it and answers 202 Accepted with the event ID; the
bandit update happens in the stream consumer. Otherwise the event is
ingested synchronously and the response carries the updated bandit state.

Feedback is rate limited per client IP with go-chi/httprate. CORS is
handled by go-chi/cors when origins are configured.
*/
package api
