// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/adaptrank/internal/metrics"
	"github.com/tomtom215/adaptrank/internal/ranking"
	"github.com/tomtom215/adaptrank/internal/resilience"
)

// InteractionStore is the interaction log and profile store backing the
// collaborative filter. It also records accepted feedback events.
//
// Reads on the ranking path go through circuit breakers so that an
// unhealthy database fails fast.
type InteractionStore struct {
	db         *DB
	now        func() time.Time
	peersCB    *resilience.Breaker[[]ranking.UserID]
	interactCB *resilience.Breaker[[]ranking.Interaction]
}

// NewInteractionStore creates a store over db.
func NewInteractionStore(db *DB) *InteractionStore {
	return &InteractionStore{
		db:         db,
		now:        time.Now,
		peersCB:    resilience.NewBreaker[[]ranking.UserID](resilience.DefaultBreakerConfig("duckdb-similar-users"), db.logger),
		interactCB: resilience.NewBreaker[[]ranking.Interaction](resilience.DefaultBreakerConfig("duckdb-interactions"), db.logger),
	}
}

// UpsertProfile inserts or replaces a user's declared profile.
func (s *InteractionStore) UpsertProfile(ctx context.Context, profile ranking.UserProfile) (err error) {
	if profile.ID == "" {
		return ErrEmptyUserID
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert_profile", time.Since(start), err) }()

	prefs, err := json.Marshal(profile.Preferences)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	ctx, cancel := s.db.ensureContext(ctx)
	defer cancel()

	return s.db.withConflictRetry(ctx, func() error {
		_, execErr := s.db.conn.ExecContext(ctx, `
			INSERT INTO user_profiles (user_id, income, preferences, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				income = excluded.income,
				preferences = excluded.preferences,
				updated_at = excluded.updated_at`,
			string(profile.ID), profile.Income, string(prefs), s.now().UTC())
		if execErr != nil {
			return fmt.Errorf("failed to upsert profile %s: %w", profile.ID, execErr)
		}
		return nil
	})
}

// Profile returns a stored profile.
func (s *InteractionStore) Profile(ctx context.Context, id ranking.UserID) (profile ranking.UserProfile, found bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get_profile", time.Since(start), err) }()

	ctx, cancel := s.db.ensureContext(ctx)
	defer cancel()

	var prefs sql.NullString
	profile.ID = id
	err = s.db.conn.QueryRowContext(ctx,
		`SELECT income, preferences FROM user_profiles WHERE user_id = ?`, string(id),
	).Scan(&profile.Income, &prefs)
	if errors.Is(err, sql.ErrNoRows) {
		return ranking.UserProfile{}, false, nil
	}
	if err != nil {
		return ranking.UserProfile{}, false, fmt.Errorf("failed to read profile %s: %w", id, err)
	}
	if prefs.Valid && prefs.String != "" {
		if err = json.Unmarshal([]byte(prefs.String), &profile.Preferences); err != nil {
			return ranking.UserProfile{}, false, fmt.Errorf("failed to decode preferences of %s: %w", id, err)
		}
	}
	return profile, true, nil
}

// RecordInteraction appends an interaction to the log.
func (s *InteractionStore) RecordInteraction(ctx context.Context, in ranking.Interaction) (err error) {
	switch {
	case in.UserID == "":
		return ErrEmptyUserID
	case in.ItemID == "":
		return ErrEmptyItemID
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("record_interaction", time.Since(start), err) }()

	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = s.now()
	}

	ctx, cancel := s.db.ensureContext(ctx)
	defer cancel()

	var rating any
	if in.Rating != nil {
		rating = *in.Rating
	}

	_, err = s.db.conn.ExecContext(ctx,
		`INSERT INTO interactions (item_id, user_id, action, rating, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		string(in.ItemID), string(in.UserID), strings.ToLower(in.Action), rating, occurred.UTC())
	if err != nil {
		s.logConnectionError(err, "record_interaction")
		return fmt.Errorf("failed to record interaction: %w", err)
	}
	return nil
}

// SimilarUsers returns up to limit users, other than target, whose income
// lies within target.Income*(1±tolerance), closest income first. A target
// without a positive income has no peers.
func (s *InteractionStore) SimilarUsers(ctx context.Context, target ranking.UserProfile, tolerance float64, limit int) ([]ranking.UserID, error) {
	if limit <= 0 || !(target.Income > 0) {
		return nil, nil
	}
	low := target.Income * (1 - tolerance)
	high := target.Income * (1 + tolerance)

	return s.peersCB.Execute(func() (users []ranking.UserID, err error) {
		start := time.Now()
		defer func() { metrics.RecordDBQuery("similar_users", time.Since(start), err) }()

		//nolint:gosec // G201: limit is an int
		rows, err := s.db.conn.QueryContext(ctx, fmt.Sprintf(`
			SELECT user_id FROM user_profiles
			WHERE income BETWEEN ? AND ? AND user_id <> ?
			ORDER BY abs(income - ?), user_id
			LIMIT %d`, limit),
			low, high, string(target.ID), target.Income)
		if err != nil {
			s.logConnectionError(err, "similar_users")
			return nil, fmt.Errorf("failed to query similar users: %w", err)
		}
		defer closeWithLog(rows, s.db.logger, "rows")

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return nil, fmt.Errorf("failed to scan user id: %w", err)
			}
			users = append(users, ranking.UserID(id))
		}
		return users, rows.Err()
	})
}

// Interactions returns every logged interaction of users with item.
func (s *InteractionStore) Interactions(ctx context.Context, item ranking.ItemID, users []ranking.UserID) ([]ranking.Interaction, error) {
	if len(users) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(users))
	args := make([]any, 0, len(users)+1)
	args = append(args, string(item))
	for i, u := range users {
		placeholders[i] = "?"
		args = append(args, string(u))
	}
	//nolint:gosec // G201: only placeholders are interpolated
	query := fmt.Sprintf(`
		SELECT item_id, user_id, action, rating, occurred_at FROM interactions
		WHERE item_id = ? AND user_id IN (%s)
		ORDER BY occurred_at`, strings.Join(placeholders, ", "))

	return s.interactCB.Execute(func() (out []ranking.Interaction, err error) {
		start := time.Now()
		defer func() { metrics.RecordDBQuery("item_interactions", time.Since(start), err) }()

		rows, err := s.db.conn.QueryContext(ctx, query, args...)
		if err != nil {
			s.logConnectionError(err, "item_interactions")
			return nil, fmt.Errorf("failed to query interactions: %w", err)
		}
		defer closeWithLog(rows, s.db.logger, "rows")

		for rows.Next() {
			var (
				in             ranking.Interaction
				itemID, userID string
				rating         sql.NullFloat64
			)
			if err := rows.Scan(&itemID, &userID, &in.Action, &rating, &in.OccurredAt); err != nil {
				return nil, fmt.Errorf("failed to scan interaction: %w", err)
			}
			in.ItemID = ranking.ItemID(itemID)
			in.UserID = ranking.UserID(userID)
			if rating.Valid {
				r := rating.Float64
				in.Rating = &r
			}
			out = append(out, in)
		}
		return out, rows.Err()
	})
}

func (s *InteractionStore) logConnectionError(err error, op string) {
	if isConnectionError(err) {
		s.db.logger.Error().Err(err).Str("operation", op).Msg("Database connection lost")
	}
}
