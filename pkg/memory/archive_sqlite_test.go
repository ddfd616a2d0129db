// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

func newTestArchive(t *testing.T) *SQLiteArchive {
	t.Helper()
	archive, err := OpenSQLiteArchive(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteArchive failed: %v", err)
	}
	t.Cleanup(func() { archive.Close() })
	return archive
}

func TestSQLiteArchive_AppendAndHistory(t *testing.T) {
	archive := newTestArchive(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := archive.Append(ctx, "alice", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := archive.Append(ctx, "bob", "other", "reply"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	entries, err := archive.History(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Chronological order, most recent window.
	if entries[0].Query != "q1" || entries[1].Query != "q2" {
		t.Errorf("unexpected window: %+v", entries)
	}
	if entries[0].UserID != "alice" {
		t.Errorf("expected alice rows only, got %+v", entries[0])
	}
}

func TestSQLiteArchive_HistoryEmpty(t *testing.T) {
	archive := newTestArchive(t)

	entries, err := archive.History(context.Background(), "nobody", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestSQLiteArchive_Prune(t *testing.T) {
	archive := newTestArchive(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := archive.Append(ctx, "alice", fmt.Sprintf("q%d", i), "a"); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	if err := archive.Prune(ctx, 4); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	entries, err := archive.History(ctx, "alice", 100)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries after prune, got %d", len(entries))
	}
	if entries[0].Query != "q6" || entries[3].Query != "q9" {
		t.Errorf("expected most recent rows to survive, got %+v", entries)
	}
}
