// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

const archiveTable = "conversation_archive"

// SQLiteArchive persists conversation exchanges in a SQLite database.
// It is the durable alternative to the JSON store's conversation list
// for installations that outgrow a single flat file.
type SQLiteArchive struct {
	db *sql.DB
}

// OpenSQLiteArchive opens (or creates) a SQLite archive at path and
// ensures the schema.
func OpenSQLiteArchive(path string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite archive: %w", err)
	}
	a, err := NewSQLiteArchive(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// NewSQLiteArchive creates an archive over an existing connection and
// ensures the schema.
func NewSQLiteArchive(db *sql.DB) (*SQLiteArchive, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if err := ensureArchiveSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteArchive{db: db}, nil
}

func ensureArchiveSchema(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			query TEXT NOT NULL,
			response TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`, archiveTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_user ON %s(user_id);`, archiveTable, archiveTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_created ON %s(created_at);`, archiveTable, archiveTable),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure archive schema: %w", err)
		}
	}
	return nil
}

// Append stores one exchange.
func (a *SQLiteArchive) Append(ctx context.Context, userID, query, response string) error {
	_, err := a.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, user_id, query, response, created_at) VALUES (?, ?, ?, ?, ?)`, archiveTable),
		uuid.New().String(), userID, query, response, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("append to archive: %w", err)
	}
	return nil
}

// History returns the user's most recent limit exchanges in
// chronological order.
func (a *SQLiteArchive) History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	rows, err := a.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT user_id, query, response, created_at
			FROM %s WHERE user_id = ?
			ORDER BY created_at DESC, rowid DESC LIMIT ?`, archiveTable),
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var created int64
		if err := rows.Scan(&e.UserID, &e.Query, &e.Response, &created); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		e.Timestamp = time.Unix(0, created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows come back newest-first; reverse to chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Prune keeps only the most recent keep rows across all users.
func (a *SQLiteArchive) Prune(ctx context.Context, keep int) error {
	_, err := a.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id NOT IN (
			SELECT id FROM %s ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, archiveTable, archiveTable),
		keep,
	)
	if err != nil {
		return fmt.Errorf("prune archive: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}
