// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package bandit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/adaptrank/internal/metrics"
	"github.com/tomtom215/adaptrank/internal/ranking"
)

// updateScript applies one delta to a hash {success, failure} atomically on
// the server. ARGV: delta, floor, prior.
var updateScript = redis.NewScript(`
local s = tonumber(redis.call('HGET', KEYS[1], 'success') or ARGV[3])
local f = tonumber(redis.call('HGET', KEYS[1], 'failure') or ARGV[3])
local d = tonumber(ARGV[1])
local floor = tonumber(ARGV[2])
if d > 0 then s = s + d elseif d < 0 then f = f - d end
if s < floor then s = floor end
if f < floor then f = floor end
local ss = string.format('%.17g', s)
local fs = string.format('%.17g', f)
redis.call('HSET', KEYS[1], 'success', ss, 'failure', fs)
return {ss, fs}
`)

// scanBatch is the COUNT hint used when iterating keys.
const scanBatch = 256

// RedisStore keeps bandit state in Redis hashes so several rankers can share
// it. Updates run as a Lua script, which Redis executes atomically.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	closed atomic.Bool
}

// NewRedisStore wraps client. The caller keeps ownership of client unless
// the store is closed.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedisStore connects to addr and verifies the connection.
func OpenRedisStore(ctx context.Context, addr, password string, db int, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedisStore(client, prefix), nil
}

// Name implements Backend.
func (s *RedisStore) Name() string { return BackendRedis }

func (s *RedisStore) key(id ranking.ItemID) string {
	return s.prefix + string(id)
}

// Get returns the state of id, or the prior if it has never been updated.
func (s *RedisStore) Get(ctx context.Context, id ranking.ItemID) (ranking.BanditState, error) {
	if s.closed.Load() {
		return ranking.BanditState{}, ErrStoreClosed
	}
	return s.get(ctx, s.key(id))
}

func (s *RedisStore) get(ctx context.Context, key string) (ranking.BanditState, error) {
	vals, err := s.client.HMGet(ctx, key, "success", "failure").Result()
	if err != nil {
		return ranking.BanditState{}, fmt.Errorf("get bandit state: %w", err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return ranking.PriorState(), nil
	}

	success, err := parseShape(vals[0])
	if err != nil {
		return ranking.BanditState{}, err
	}
	failure, err := parseShape(vals[1])
	if err != nil {
		return ranking.BanditState{}, err
	}
	return ranking.BanditState{Success: success, Failure: failure}, nil
}

// ApplyUpdate implements Store.
func (s *RedisStore) ApplyUpdate(ctx context.Context, id ranking.ItemID, delta float64) (ranking.BanditState, error) {
	start := time.Now()
	state, err := s.applyUpdate(ctx, id, delta)
	metrics.RecordBanditUpdate(BackendRedis, time.Since(start), err)
	return state, err
}

func (s *RedisStore) applyUpdate(ctx context.Context, id ranking.ItemID, delta float64) (ranking.BanditState, error) {
	if s.closed.Load() {
		return ranking.BanditState{}, ErrStoreClosed
	}
	if err := checkUpdate(id, delta); err != nil {
		return ranking.BanditState{}, err
	}

	res, err := updateScript.Run(ctx, s.client, []string{s.key(id)},
		strconv.FormatFloat(delta, 'g', -1, 64),
		strconv.FormatFloat(ranking.StateFloor, 'g', -1, 64),
		strconv.FormatFloat(ranking.PriorShape, 'g', -1, 64),
	).StringSlice()
	if err != nil {
		return ranking.BanditState{}, fmt.Errorf("update bandit state: %w", err)
	}
	if len(res) != 2 {
		return ranking.BanditState{}, fmt.Errorf("update bandit state: unexpected reply %v", res)
	}

	success, err := strconv.ParseFloat(res[0], 64)
	if err != nil {
		return ranking.BanditState{}, fmt.Errorf("parse success: %w", err)
	}
	failure, err := strconv.ParseFloat(res[1], 64)
	if err != nil {
		return ranking.BanditState{}, fmt.Errorf("parse failure: %w", err)
	}
	return ranking.BanditState{Success: success, Failure: failure}, nil
}

// Scan implements Scanner using SCAN over the key prefix.
func (s *RedisStore) Scan(ctx context.Context, fn func(ranking.ItemID, ranking.BanditState) error) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("scan bandit keys: %w", err)
		}

		for _, key := range keys {
			state, err := s.get(ctx, key)
			if err != nil {
				return err
			}
			if err := fn(ranking.ItemID(key[len(s.prefix):]), state); err != nil {
				return err
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Ping implements Backend.
func (s *RedisStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if err := s.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}

func parseShape(v interface{}) (float64, error) {
	str, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected bandit field type %T", v)
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("parse bandit field: %w", err)
	}
	return f, nil
}
