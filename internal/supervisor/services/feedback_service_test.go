// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

type fakeRouter struct {
	runErr    error
	exitEarly bool
	closes    atomic.Int32
}

func (r *fakeRouter) Run(ctx context.Context) error {
	if r.exitEarly || r.runErr != nil {
		return r.runErr
	}
	<-ctx.Done()
	return nil
}

func (r *fakeRouter) Close() error {
	r.closes.Add(1)
	return nil
}

func TestFeedbackConsumerService_Serve(t *testing.T) {
	tests := []struct {
		name       string
		router     *fakeRouter
		factoryErr error
		cancel     bool
		wantCtxErr bool
	}{
		{name: "runs until canceled", router: &fakeRouter{}, cancel: true, wantCtxErr: true},
		{name: "router error", router: &fakeRouter{runErr: errors.New("subscribe failed")}},
		{name: "router exits early", router: &fakeRouter{exitEarly: true}},
		{name: "factory error", factoryErr: errors.New("no stream")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFeedbackConsumerService(func() (FeedbackRouter, error) {
				if tt.factoryErr != nil {
					return nil, tt.factoryErr
				}
				return tt.router, nil
			}, zerolog.Nop())

			ctx, cancel := context.WithCancel(context.Background())
			if tt.cancel {
				time.AfterFunc(20*time.Millisecond, cancel)
			}
			defer cancel()

			err := svc.Serve(ctx)
			if err == nil {
				t.Fatal("Serve() = nil, want error")
			}
			if got := errors.Is(err, context.Canceled); got != tt.wantCtxErr {
				t.Errorf("Serve() = %v, want context error %v", err, tt.wantCtxErr)
			}
			if tt.factoryErr != nil && !errors.Is(err, tt.factoryErr) {
				t.Errorf("Serve() = %v, want %v", err, tt.factoryErr)
			}
			if tt.router != nil && tt.router.closes.Load() != 1 {
				t.Errorf("Close calls = %d, want 1", tt.router.closes.Load())
			}
		})
	}
}

func TestFeedbackConsumerService_RebuildsOnRestart(t *testing.T) {
	var built atomic.Int32
	svc := NewFeedbackConsumerService(func() (FeedbackRouter, error) {
		if built.Add(1) == 1 {
			return &fakeRouter{exitEarly: true}, nil
		}
		return &fakeRouter{}, nil
	}, zerolog.Nop())

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 5,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for built.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("router built %d times, want 2", built.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-errCh

	if got := svc.String(); got != "feedback-consumer" {
		t.Errorf("String() = %q, want feedback-consumer", got)
	}
}
