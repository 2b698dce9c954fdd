// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the duckdb driver
	"github.com/rs/zerolog"
)

// DB is a DuckDB connection pool.
type DB struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// Open opens the DuckDB database at path. An empty path opens an in-memory
// database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(ctx context.Context, path string, logger zerolog.Logger) (*DB, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	db := &DB{
		conn:   conn,
		logger: logger.With().Str("component", "database").Logger(),
	}
	db.logger.Debug().Str("path", dsn).Msg("DuckDB opened")
	return db, nil
}

// Conn returns the underlying pool.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close() //nolint:errcheck // cleanup is best-effort
	}
}
