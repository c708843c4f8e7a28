// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS credentials (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// SQLiteTier stores values in a SQLite database. It is the persistent tier.
type SQLiteTier struct {
	name string
	path string
	db   *sql.DB
}

// DefaultPersistentPath returns ~/.onboard/credentials.db.
func DefaultPersistentPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".onboard", "credentials.db"), nil
}

// OpenSQLiteTier opens (creating if needed) the database at path.
func OpenSQLiteTier(name, path string) (*SQLiteTier, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// SECURITY: The database holds a bearer token
	if err := os.Chmod(path, 0600); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to secure database file: %w", err)
	}

	return &SQLiteTier{name: name, path: path, db: db}, nil
}

// Name implements Tier.
func (s *SQLiteTier) Name() string { return s.name }

// Path returns the database path.
func (s *SQLiteTier) Path() string { return s.path }

// Load implements Tier.
func (s *SQLiteTier) Load(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM credentials")
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	values := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	return values, nil
}

// Replace implements Tier. The delete and inserts run in one transaction.
func (s *SQLiteTier) Replace(ctx context.Context, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM credentials"); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO credentials (key, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for k, v := range values {
		if _, err := stmt.ExecContext(ctx, k, v); err != nil {
			return fmt.Errorf("failed to store %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit credentials: %w", err)
	}
	return nil
}

// Clear implements Tier.
func (s *SQLiteTier) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM credentials"); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteTier) Close() error {
	return s.db.Close()
}
