// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package feedback

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/adaptrank/internal/ranking"
	"github.com/tomtom215/adaptrank/internal/ranking/bandit"
)

// countingStore wraps a MemoryStore and counts updates.
type countingStore struct {
	*bandit.MemoryStore
	mu      sync.Mutex
	updates int
	err     error
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: bandit.NewMemoryStore()}
}

func (s *countingStore) ApplyUpdate(ctx context.Context, id ranking.ItemID, delta float64) (ranking.BanditState, error) {
	s.mu.Lock()
	s.updates++
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return ranking.BanditState{}, err
	}
	return s.MemoryStore.ApplyUpdate(ctx, id, delta)
}

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

// mockRecorder implements InteractionRecorder for testing.
type mockRecorder struct {
	mu       sync.Mutex
	recorded []ranking.Interaction
	err      error
}

func (m *mockRecorder) RecordInteraction(_ context.Context, in ranking.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.recorded = append(m.recorded, in)
	return nil
}

func floatPtr(v float64) *float64 { return &v }

func TestIngester_Ingest(t *testing.T) {
	tests := []struct {
		name   string
		action string
		want   ranking.BanditState
	}{
		{name: "purchase adds one success", action: "purchase", want: ranking.BanditState{Success: 2, Failure: 1}},
		{name: "like", action: "like", want: ranking.BanditState{Success: 1.5, Failure: 1}},
		{name: "save is like", action: "save", want: ranking.BanditState{Success: 1.5, Failure: 1}},
		{name: "click", action: "click", want: ranking.BanditState{Success: 1.2, Failure: 1}},
		{name: "view leaves prior", action: "view", want: ranking.PriorState()},
		{name: "dismiss adds failure", action: "dismiss", want: ranking.BanditState{Success: 1, Failure: 1.3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newCountingStore()
			ing := NewIngester(store, zerolog.Nop())

			res, err := ing.Ingest(context.Background(), Event{ItemID: "x", Action: tt.action})
			if err != nil {
				t.Fatalf("Ingest() error = %v", err)
			}
			if store.count() != 1 {
				t.Errorf("updates = %d, want exactly 1", store.count())
			}
			if math.Abs(res.State.Success-tt.want.Success) > 1e-9 || math.Abs(res.State.Failure-tt.want.Failure) > 1e-9 {
				t.Errorf("State = %+v, want %+v", res.State, tt.want)
			}
			if store.Len() != 1 {
				t.Errorf("store.Len() = %d, want 1 (state materialized)", store.Len())
			}
		})
	}
}

func TestIngester_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr error
	}{
		{name: "unknown action", event: Event{ItemID: "x", Action: "hover"}, wantErr: ranking.ErrInvalidActionKind},
		{name: "missing item", event: Event{Action: "click"}, wantErr: ErrInvalidEvent},
		{name: "missing action", event: Event{ItemID: "x"}, wantErr: ErrInvalidEvent},
		{name: "rating out of range", event: Event{ItemID: "x", Action: "like", Rating: floatPtr(7)}, wantErr: ErrInvalidEvent},
		{name: "NaN rating", event: Event{ItemID: "x", Action: "like", Rating: floatPtr(math.NaN())}, wantErr: ErrInvalidEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newCountingStore()
			rec := &mockRecorder{}
			ing := NewIngester(store, zerolog.Nop(), WithRecorder(rec))

			_, err := ing.Ingest(context.Background(), tt.event)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Ingest() error = %v, want %v", err, tt.wantErr)
			}
			if !IsPermanent(err) {
				t.Errorf("IsPermanent(%v) = false, want true", err)
			}
			if store.count() != 0 {
				t.Errorf("updates = %d, want 0", store.count())
			}
			if len(rec.recorded) != 0 {
				t.Errorf("recorded = %d, want 0", len(rec.recorded))
			}
		})
	}
}

func TestIngester_DuplicatesCountedTwice(t *testing.T) {
	store := newCountingStore()
	ing := NewIngester(store, zerolog.Nop())
	ev := Event{EventID: "same", ItemID: "x", Action: "purchase"}

	for i := 0; i < 2; i++ {
		if _, err := ing.Ingest(context.Background(), ev); err != nil {
			t.Fatalf("Ingest() error = %v", err)
		}
	}

	got, _ := store.Get(context.Background(), "x")
	if got.Success != 3 {
		t.Errorf("Success = %f, want 3", got.Success)
	}
}

func TestIngester_StoreError(t *testing.T) {
	store := newCountingStore()
	store.err = errors.New("backend down")
	rec := &mockRecorder{}
	ing := NewIngester(store, zerolog.Nop(), WithRecorder(rec))

	_, err := ing.Ingest(context.Background(), Event{ItemID: "x", UserID: "u", Action: "click"})
	if err == nil {
		t.Fatal("Ingest() error = nil, want error")
	}
	if IsPermanent(err) {
		t.Error("store failure classified as permanent")
	}
	if len(rec.recorded) != 0 {
		t.Error("interaction recorded although update failed")
	}
}

func TestIngester_RecordsInteraction(t *testing.T) {
	store := newCountingStore()
	rec := &mockRecorder{}
	ing := NewIngester(store, zerolog.Nop(), WithRecorder(rec))
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ing.now = func() time.Time { return fixed }

	_, err := ing.Ingest(context.Background(), Event{ItemID: "x", UserID: "u1", Action: "Save", Rating: floatPtr(4.5)})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if len(rec.recorded) != 1 {
		t.Fatalf("recorded = %d, want 1", len(rec.recorded))
	}
	got := rec.recorded[0]
	if got.ItemID != "x" || got.UserID != "u1" || got.Action != string(ActionLike) {
		t.Errorf("recorded = %+v", got)
	}
	if got.Rating == nil || *got.Rating != 4.5 {
		t.Errorf("Rating = %v, want 4.5", got.Rating)
	}
	if !got.OccurredAt.Equal(fixed) {
		t.Errorf("OccurredAt = %v, want %v", got.OccurredAt, fixed)
	}

	t.Run("anonymous events are not recorded", func(t *testing.T) {
		if _, err := ing.Ingest(context.Background(), Event{ItemID: "x", Action: "click"}); err != nil {
			t.Fatalf("Ingest() error = %v", err)
		}
		if len(rec.recorded) != 1 {
			t.Errorf("recorded = %d, want 1", len(rec.recorded))
		}
	})
}

func TestIngester_RecorderFailureIsNotFatal(t *testing.T) {
	store := newCountingStore()
	ing := NewIngester(store, zerolog.Nop(), WithRecorder(&mockRecorder{err: errors.New("disk full")}))

	if _, err := ing.Ingest(context.Background(), Event{ItemID: "x", UserID: "u", Action: "purchase"}); err != nil {
		t.Fatalf("Ingest() error = %v, want nil", err)
	}
	if store.count() != 1 {
		t.Errorf("updates = %d, want 1", store.count())
	}
}

func TestIngester_Limiter(t *testing.T) {
	store := newCountingStore()
	// Empty bucket that never refills.
	limiter := rate.NewLimiter(rate.Limit(0), 0)
	ing := NewIngester(store, zerolog.Nop(), WithLimiter(limiter))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := ing.Ingest(ctx, Event{ItemID: "x", Action: "click"}); err == nil {
		t.Fatal("Ingest() error = nil, want limiter error")
	}
	if store.count() != 0 {
		t.Errorf("updates = %d, want 0", store.count())
	}
}

func TestIngester_Concurrent(t *testing.T) {
	store := newCountingStore()
	ing := NewIngester(store, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ing.Ingest(context.Background(), Event{ItemID: "hot", Action: "purchase"}); err != nil {
				t.Errorf("Ingest() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := store.Get(context.Background(), "hot")
	if got.Success != 51 {
		t.Errorf("Success = %f, want 51", got.Success)
	}
}
