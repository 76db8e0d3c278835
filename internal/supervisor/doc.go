// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

/*
Package supervisor runs the long-lived services of the ranking server under
a suture v4 supervisor tree.

# Layout

	RootSupervisor ("adaptrank")
	├── StateSupervisor ("state-layer")
	│   └── BanditStatsService
	├── FeedbackSupervisor ("feedback-layer")
	│   ├── NATSServerService (if NATS_EMBEDDED)
	│   └── FeedbackConsumerService (if NATS_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures on its own, so a consumer that cannot reach
JetStream backs off without restarting the HTTP server.

# Logging

Supervisor events (service failures, restarts, backoff) are logged through
sutureslog. The slog logger comes from logging.NewSlogLogger so these
events share the zerolog output of the rest of the server.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddStateService(services.NewBanditStatsService(store, 30*time.Second, logger))
	tree.AddAPIService(services.NewHTTPServerService(httpServer, 15*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

See the services subpackage for the service wrappers.
*/
package supervisor
