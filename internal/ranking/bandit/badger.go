// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package bandit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/adaptrank/internal/metrics"
	"github.com/tomtom215/adaptrank/internal/ranking"
)

// defaultConflictRetries bounds optimistic transaction retries per update.
const defaultConflictRetries = 16

// BadgerStore persists bandit state in BadgerDB. Each update is a
// read-modify-write transaction on a single key. Updates to the same item
// are serialized by that item's own lock; different items never share one.
type BadgerStore struct {
	db         *badger.DB
	prefix     string
	ownsDB     bool
	maxRetries int
	locks      sync.Map // ranking.ItemID -> *sync.Mutex
}

// NewBadgerStore wraps an open database. The caller keeps ownership of db.
func NewBadgerStore(db *badger.DB, prefix string) *BadgerStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &BadgerStore{db: db, prefix: prefix, maxRetries: defaultConflictRetries}
}

// OpenBadgerStore opens (or creates) a database at path. An empty path opens
// an in-memory database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadgerStore(path, prefix string, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(&badgerLogger{logger: logger.With().Str("component", "badger").Logger()})
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	s := NewBadgerStore(db, prefix)
	s.ownsDB = true
	return s, nil
}

// Name implements Backend.
func (s *BadgerStore) Name() string { return BackendBadger }

func (s *BadgerStore) key(id ranking.ItemID) []byte {
	return []byte(s.prefix + string(id))
}

// Get returns the state of id, or the prior if it has never been updated.
func (s *BadgerStore) Get(ctx context.Context, id ranking.ItemID) (ranking.BanditState, error) {
	if err := ctx.Err(); err != nil {
		return ranking.BanditState{}, err
	}
	if s.db.IsClosed() {
		return ranking.BanditState{}, ErrStoreClosed
	}

	state := ranking.PriorState()
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		state, err = s.read(txn, id)
		return err
	})
	if err != nil {
		return ranking.BanditState{}, fmt.Errorf("get bandit state: %w", err)
	}
	return state, nil
}

// read loads the state of id inside txn, defaulting to the prior.
func (s *BadgerStore) read(txn *badger.Txn, id ranking.ItemID) (ranking.BanditState, error) {
	item, err := txn.Get(s.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ranking.PriorState(), nil
	}
	if err != nil {
		return ranking.BanditState{}, err
	}

	var state ranking.BanditState
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &state)
	})
	return state, err
}

// ApplyUpdate implements Store.
func (s *BadgerStore) ApplyUpdate(ctx context.Context, id ranking.ItemID, delta float64) (ranking.BanditState, error) {
	start := time.Now()
	state, err := s.applyUpdate(ctx, id, delta)
	metrics.RecordBanditUpdate(BackendBadger, time.Since(start), err)
	return state, err
}

func (s *BadgerStore) applyUpdate(ctx context.Context, id ranking.ItemID, delta float64) (ranking.BanditState, error) {
	if err := checkUpdate(id, delta); err != nil {
		return ranking.BanditState{}, err
	}
	if s.db.IsClosed() {
		return ranking.BanditState{}, ErrStoreClosed
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	var next ranking.BanditState
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return ranking.BanditState{}, err
		}

		err := s.db.Update(func(txn *badger.Txn) error {
			current, err := s.read(txn, id)
			if err != nil {
				return err
			}
			next = Apply(current, delta)

			data, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("marshal bandit state: %w", err)
			}
			return txn.Set(s.key(id), data)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return ranking.BanditState{}, fmt.Errorf("update bandit state: %w", err)
		}
		return next, nil
	}

	return ranking.BanditState{}, fmt.Errorf("update bandit state: %w after %d attempts", badger.ErrConflict, s.maxRetries)
}

// lockFor returns the update lock of id.
func (s *BadgerStore) lockFor(id ranking.ItemID) *sync.Mutex {
	if v, ok := s.locks.Load(id); ok {
		return v.(*sync.Mutex)
	}
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Scan implements Scanner.
func (s *BadgerStore) Scan(ctx context.Context, fn func(ranking.ItemID, ranking.BanditState) error) error {
	if s.db.IsClosed() {
		return ErrStoreClosed
	}

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(s.prefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			id := ranking.ItemID(item.Key()[len(prefix):])

			var state ranking.BanditState
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &state)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", id, err)
			}
			if err := fn(id, state); err != nil {
				return err
			}
		}
		return nil
	})
}

// Ping implements Backend.
func (s *BadgerStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return ErrStoreClosed
	}
	return nil
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if !s.ownsDB || s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// badgerLogger routes Badger's internal logging through zerolog.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(format, args...)
}
