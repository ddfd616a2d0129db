// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.json")
	return NewStore(path), path
}

func TestStore_SaveAndGetPreference(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.SavePreference("alice", "favorite_language", "Python"); err != nil {
		t.Fatalf("SavePreference failed: %v", err)
	}

	prefs := store.Preferences("alice")
	if prefs["favorite_language"] != "Python" {
		t.Errorf("expected Python, got %v", prefs["favorite_language"])
	}
}

func TestStore_LastWriteWins(t *testing.T) {
	store, _ := newTestStore(t)

	store.SavePreference("alice", "favorite_color", "red")
	store.SavePreference("alice", "favorite_color", "blue")

	prefs := store.Preferences("alice")
	if prefs["favorite_color"] != "blue" {
		t.Errorf("expected last write to win, got %v", prefs["favorite_color"])
	}
}

func TestStore_IdempotentSave(t *testing.T) {
	store, path := newTestStore(t)

	for i := 0; i < 5; i++ {
		if err := store.SavePreference("alice", "favorite_language", "Python"); err != nil {
			t.Fatalf("SavePreference %d failed: %v", i, err)
		}
	}

	prefs := store.Preferences("alice")
	if len(prefs) != 1 || prefs["favorite_language"] != "Python" {
		t.Errorf("unexpected preferences: %v", prefs)
	}

	// Reloading the file reproduces the same mapping.
	reloaded := NewStore(path)
	prefs = reloaded.Preferences("alice")
	if len(prefs) != 1 || prefs["favorite_language"] != "Python" {
		t.Errorf("unexpected reloaded preferences: %v", prefs)
	}
}

func TestStore_LazyUserCreationPersists(t *testing.T) {
	store, path := newTestStore(t)

	prefs := store.Preferences("bob")
	if len(prefs) != 0 {
		t.Errorf("expected empty preferences for new user, got %v", prefs)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected store file to exist after lazy creation: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("store file is not valid JSON: %v", err)
	}
	users, _ := decoded["users"].(map[string]any)
	if _, ok := users["bob"]; !ok {
		t.Error("expected user record for bob in the durable file")
	}
}

func TestStore_FlatFileShape(t *testing.T) {
	store, path := newTestStore(t)
	store.SavePreference("alice", "favorite_language", "Python")

	raw, _ := os.ReadFile(path)
	var decoded struct {
		Users map[string]struct {
			Preferences map[string]any `json:"preferences"`
		} `json:"users"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	// Preferences serialize as flat key→value, not nested objects.
	if decoded.Users["alice"].Preferences["favorite_language"] != "Python" {
		t.Errorf("expected flat preference value, got %v",
			decoded.Users["alice"].Preferences["favorite_language"])
	}
}

func TestStore_MalformedFileReinitializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path)
	prefs := store.Preferences("alice")
	if len(prefs) != 0 {
		t.Errorf("expected empty store after malformed file, got %v", prefs)
	}
}

func TestStore_WriteFailureKeepsMemoryAuthoritative(t *testing.T) {
	dir := t.TempDir()
	// A path whose parent is a file cannot be created.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewStore(filepath.Join(blocker, "sub", "memory.json"))

	err := store.SavePreference("alice", "favorite_language", "Python")
	if err == nil {
		t.Fatal("expected a storage error")
	}

	// The in-memory update still applies.
	prefs := store.Preferences("alice")
	if prefs["favorite_language"] != "Python" {
		t.Errorf("expected in-memory state to remain authoritative, got %v", prefs)
	}
}

func TestStore_ConversationHistoryCapped(t *testing.T) {
	store, _ := newTestStore(t)

	for i := 0; i < 120; i++ {
		if err := store.AddConversation("alice", "q", "a"); err != nil {
			t.Fatalf("AddConversation failed: %v", err)
		}
	}

	all := store.History("alice", 0)
	if len(all) != maxStoredConversations {
		t.Errorf("expected history capped at %d, got %d", maxStoredConversations, len(all))
	}
}

func TestStore_HistoryPerUserAndLimit(t *testing.T) {
	store, _ := newTestStore(t)

	store.AddConversation("alice", "a1", "r1")
	store.AddConversation("bob", "b1", "r1")
	store.AddConversation("alice", "a2", "r2")
	store.AddConversation("alice", "a3", "r3")

	got := store.History("alice", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	// Chronological order, most recent window.
	if got[0].Query != "a2" || got[1].Query != "a3" {
		t.Errorf("unexpected history window: %+v", got)
	}

	if got := store.History("carol", 5); len(got) != 0 {
		t.Errorf("expected no history for unknown user, got %d", len(got))
	}
}

func TestStore_LearnedPatterns(t *testing.T) {
	store, path := newTestStore(t)

	if err := store.LearnPattern("greeting_style", "formal"); err != nil {
		t.Fatalf("LearnPattern failed: %v", err)
	}

	data, ok := store.Pattern("greeting_style")
	if !ok || data != "formal" {
		t.Errorf("expected pattern 'formal', got %v (ok=%v)", data, ok)
	}

	reloaded := NewStore(path)
	data, ok = reloaded.Pattern("greeting_style")
	if !ok || data != "formal" {
		t.Errorf("expected pattern to survive reload, got %v (ok=%v)", data, ok)
	}

	if _, ok := store.Pattern("unknown"); ok {
		t.Error("expected unknown pattern to report ok=false")
	}
}
