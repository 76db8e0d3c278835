// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

/*
database_schema.go - Database Schema Management

Tables:
  - user_profiles: declared attributes of each user (income, preferences),
    used to find peers for collaborative scoring
  - interactions: append-only log of accepted feedback events

Index Strategy:
  - user_profiles(income) for the income band scan
  - interactions(item_id, user_id) for the per-item peer lookup
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS user_profiles (
			user_id VARCHAR PRIMARY KEY,
			income DOUBLE NOT NULL,
			preferences VARCHAR,
			updated_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS interactions (
			item_id VARCHAR NOT NULL,
			user_id VARCHAR NOT NULL,
			action VARCHAR NOT NULL,
			rating DOUBLE,
			occurred_at TIMESTAMP NOT NULL
		);`,
	}
}

// createIndexes creates indexes for the collaborative filter queries
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range indexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

func indexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_user_profiles_income ON user_profiles(income);`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_item_user ON interactions(item_id, user_id);`,
	}
}
