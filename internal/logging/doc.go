// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

// Package logging provides the process-wide zerolog logger and the adapters
// that route third-party logging into it.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Msg("Server starting")
//	logging.Ctx(ctx).Warn().Str("item_id", id).Msg("signal fell back")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// event is never written.
//
// # Request Correlation
//
// ContextWithRequestID stores the ranking request id on a context. Ctx and
// CtxWith add it as the request_id field, so every log line emitted while
// scoring a request can be joined back to it.
//
// # Adapters
//
//   - SlogHandler exposes zerolog as a slog.Handler for the suture
//     supervisor (via sutureslog).
//   - WatermillAdapter exposes zerolog as a watermill.LoggerAdapter for the
//     feedback router, subscriber and publisher.
package logging
