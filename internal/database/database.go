// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"
)

// Config holds DuckDB settings.
type Config struct {
	// Path is the database file. ":memory:" keeps everything in memory.
	Path string `koanf:"path" validate:"required"`

	// MaxMemory is DuckDB's memory limit, e.g. "1GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the number of DuckDB threads (0 = use NumCPU).
	Threads int `koanf:"threads" validate:"gte=0"`

	// PreserveInsertionOrder trades memory for stable result order.
	PreserveInsertionOrder bool `koanf:"preserve_insertion_order"`

	// SkipIndexes skips index creation (for fast test setup).
	SkipIndexes bool `koanf:"skip_indexes"`
}

// DefaultConfig returns a file-backed configuration under ./data.
func DefaultConfig() Config {
	return Config{
		Path:                   "./data/adaptrank.duckdb",
		MaxMemory:              "1GB",
		PreserveInsertionOrder: true,
	}
}

// DB wraps the DuckDB connection holding user profiles and the
// interaction log.
type DB struct {
	conn   *sql.DB
	cfg    Config
	logger zerolog.Logger

	maxConflictRetries int
	conflictDelay      time.Duration
}

// New opens the database and initializes the schema.
func New(cfg Config, logger zerolog.Logger) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}
	if cfg.MaxMemory == "" {
		cfg.MaxMemory = "1GB"
	}

	// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
	if cfg.Path != ":memory:" {
		if dbDir := filepath.Dir(cfg.Path); dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	preserveOrder := "true"
	if !cfg.PreserveInsertionOrder {
		preserveOrder = "false"
	}

	// Disable auto-install/auto-load to prevent hangs in restricted network environments
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory, preserveOrder)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:               conn,
		cfg:                cfg,
		logger:             logger.With().Str("component", "database").Logger(),
		maxConflictRetries: 3,
		conflictDelay:      10 * time.Millisecond,
	}

	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.enableProfiling(); err != nil {
		db.logger.Warn().Err(err).Msg("Query profiling not enabled")
	}

	db.logger.Info().Str("path", cfg.Path).Int("threads", numThreads).Msg("Database ready")
	return db, nil
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close checkpoints and closes the database.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	// Flush the WAL so the next start does not replay it.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Checkpoint(ctx); err != nil {
		db.logger.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}
	cancel()

	return db.conn.Close()
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// initialize creates tables and indexes.
func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return err
	}
	if db.cfg.SkipIndexes {
		return nil
	}
	return db.createIndexes()
}
