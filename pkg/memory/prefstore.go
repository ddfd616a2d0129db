// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mentis-ai/mentis/pkg/errors"
)

// maxStoredConversations caps the durable conversation list.
const maxStoredConversations = 100

// PreferenceEntry is one durable user-scoped fact. It serializes as its
// bare value so the file keeps the flat {key: value} preference shape.
type PreferenceEntry struct {
	Value     any
	UpdatedAt time.Time
}

// MarshalJSON writes only the value.
func (e PreferenceEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Value)
}

// UnmarshalJSON reads a bare value; the update time is not persisted
// per entry (the user record carries last_updated).
func (e *PreferenceEntry) UnmarshalJSON(data []byte) error {
	e.UpdatedAt = time.Time{}
	return json.Unmarshal(data, &e.Value)
}

// UserRecord holds everything stored for one user.
type UserRecord struct {
	Preferences map[string]PreferenceEntry `json:"preferences"`
	CreatedAt   time.Time                  `json:"created_at"`
	LastUpdated time.Time                  `json:"last_updated,omitempty"`
}

// HistoryEntry is one archived exchange.
type HistoryEntry struct {
	UserID    string    `json:"user_id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Pattern is a learned pattern with its learn time.
type Pattern struct {
	Data      any       `json:"data"`
	LearnedAt time.Time `json:"learned_at"`
}

type storeData struct {
	Users           map[string]*UserRecord `json:"users"`
	Conversations   []HistoryEntry         `json:"conversations"`
	LearnedPatterns map[string]Pattern     `json:"learned_patterns"`
}

func emptyStoreData() storeData {
	return storeData{
		Users:           make(map[string]*UserRecord),
		Conversations:   nil,
		LearnedPatterns: make(map[string]Pattern),
	}
}

// Store is the durable long-term memory: user preferences, a capped
// conversation history, and learned patterns, backed by a single JSON
// file rewritten wholesale on every mutation.
//
// A failed durable write is reported as a STORAGE_ERROR but never fails
// the in-memory update; the in-memory state stays authoritative for the
// rest of the process. Concurrent processes writing the same path race
// and the last writer wins.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
	data   storeData
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger used to report storage failures.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore opens (or initializes) the JSON-backed store at path.
// Unreadable or malformed content re-initializes to the empty structure
// rather than failing startup.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:   path,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.data = s.load()
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

func (s *Store) load() storeData {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("could not read memory file, starting empty",
				"path", s.path, "error", err)
		}
		return emptyStoreData()
	}

	var data storeData
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("memory file is malformed, starting empty",
			"path", s.path, "error", err)
		return emptyStoreData()
	}
	if data.Users == nil {
		data.Users = make(map[string]*UserRecord)
	}
	if data.LearnedPatterns == nil {
		data.LearnedPatterns = make(map[string]Pattern)
	}
	return data
}

// save rewrites the whole file. Caller holds the lock.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return errors.New(errors.CodeStorage, "could not encode memory", err).
			WithContext("path", s.path)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.New(errors.CodeStorage, "could not create memory directory", err).
				WithContext("path", s.path)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return errors.New(errors.CodeStorage, "could not write memory file", err).
			WithContext("path", s.path)
	}
	return nil
}

func (s *Store) userRecord(userID string) *UserRecord {
	rec, ok := s.data.Users[userID]
	if !ok {
		rec = &UserRecord{
			Preferences: make(map[string]PreferenceEntry),
			CreatedAt:   time.Now(),
		}
		s.data.Users[userID] = rec
	}
	if rec.Preferences == nil {
		rec.Preferences = make(map[string]PreferenceEntry)
	}
	return rec
}

// Preferences returns the key→value mapping for a user, lazily creating
// (and persisting) an empty record for unseen users.
func (s *Store) Preferences(userID string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, seen := s.data.Users[userID]
	rec := s.userRecord(userID)
	if !seen {
		if err := s.save(); err != nil {
			s.logger.Error("failed to persist new user record", "user_id", userID, "error", err)
		}
	}

	out := make(map[string]any, len(rec.Preferences))
	for k, e := range rec.Preferences {
		out[k] = e.Value
	}
	return out
}

// SavePreference upserts one preference (last write wins) and persists
// the store. The returned error, if any, is a STORAGE_ERROR: the
// in-memory update has already been applied.
func (s *Store) SavePreference(userID, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.userRecord(userID)
	rec.Preferences[key] = PreferenceEntry{Value: value, UpdatedAt: time.Now()}
	rec.LastUpdated = time.Now()

	if err := s.save(); err != nil {
		s.logger.Error("failed to persist preference",
			"user_id", userID, "key", key, "error", err)
		return err
	}
	return nil
}

// AddConversation appends one exchange to the durable conversation list,
// keeping only the most recent entries, and persists the store.
func (s *Store) AddConversation(userID, query, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Conversations = append(s.data.Conversations, HistoryEntry{
		UserID:    userID,
		Query:     query,
		Response:  response,
		Timestamp: time.Now(),
	})
	if len(s.data.Conversations) > maxStoredConversations {
		s.data.Conversations = append(s.data.Conversations[:0],
			s.data.Conversations[len(s.data.Conversations)-maxStoredConversations:]...)
	}

	if err := s.save(); err != nil {
		s.logger.Error("failed to persist conversation", "user_id", userID, "error", err)
		return err
	}
	return nil
}

// History returns the user's most recent limit exchanges in
// chronological order.
func (s *Store) History(userID string, limit int) []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []HistoryEntry
	for _, entry := range s.data.Conversations {
		if entry.UserID == userID {
			matched = append(matched, entry)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched
}

// LearnPattern stores a learned pattern under key and persists the store.
func (s *Store) LearnPattern(key string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.LearnedPatterns[key] = Pattern{Data: data, LearnedAt: time.Now()}

	if err := s.save(); err != nil {
		s.logger.Error("failed to persist pattern", "key", key, "error", err)
		return err
	}
	return nil
}

// Pattern returns the data for a learned pattern, if present.
func (s *Store) Pattern(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data.LearnedPatterns[key]
	if !ok {
		return nil, false
	}
	return p.Data, true
}
