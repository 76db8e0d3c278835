// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package services

import (
	"context"
	"fmt"
	"time"
)

// EmbeddedNATS matches the embedded server lifecycle of
// eventprocessor.EmbeddedServer.
type EmbeddedNATS interface {
	Shutdown(ctx context.Context) error
	IsRunning() bool
}

// NATSServerService owns the shutdown of the embedded NATS server.
//
// The server is started before the tree so that publishers and subscribers
// can connect while they are being built. The service fails if the server
// stops underneath it, which suture reports.
type NATSServerService struct {
	server          EmbeddedNATS
	shutdownTimeout time.Duration
	pollInterval    time.Duration
	name            string
}

// NewNATSServerService wraps a running embedded server.
func NewNATSServerService(server EmbeddedNATS, shutdownTimeout time.Duration) *NATSServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &NATSServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		pollInterval:    5 * time.Second,
		name:            "nats-server",
	}
}

// Serve implements suture.Service.
func (s *NATSServerService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("nats server shutdown failed: %w", err)
			}
			return ctx.Err()

		case <-ticker.C:
			if !s.server.IsRunning() {
				return fmt.Errorf("embedded nats server stopped unexpectedly")
			}
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (s *NATSServerService) String() string {
	return s.name
}
