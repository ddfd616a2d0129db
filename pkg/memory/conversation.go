// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory provides short-term and long-term memory backends for agents.
package memory

import (
	"strings"
	"sync"
	"time"
)

// Roles recognized by the conversation log.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation. Immutable once appended.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationLog is a bounded, ordered buffer of conversation turns.
// It holds at most 2×maxTurns entries (one user and one assistant message
// per logical turn); the oldest entries are evicted first.
type ConversationLog struct {
	mu       sync.RWMutex
	maxTurns int
	turns    []Turn
}

// DefaultMaxTurns is used when no explicit capacity is given.
const DefaultMaxTurns = 10

// NewConversationLog creates an empty log that keeps the last maxTurns
// logical turns. Non-positive maxTurns falls back to DefaultMaxTurns.
func NewConversationLog(maxTurns int) *ConversationLog {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &ConversationLog{maxTurns: maxTurns}
}

// Append adds a turn with the current timestamp, evicting the oldest
// entries when the 2×maxTurns cap would be exceeded.
func (l *ConversationLog) Append(role, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.turns = append(l.turns, Turn{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})

	if cap := l.maxTurns * 2; len(l.turns) > cap {
		l.turns = append(l.turns[:0], l.turns[len(l.turns)-cap:]...)
	}
}

// Len returns the number of retained entries.
func (l *ConversationLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// MaxTurns returns the configured logical-turn capacity.
func (l *ConversationLog) MaxTurns() int {
	return l.maxTurns
}

// Recent returns the last min(2×numTurns, len) entries in chronological
// order. The returned slice is a copy.
func (l *ConversationLog) Recent(numTurns int) []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if numTurns <= 0 || len(l.turns) == 0 {
		return nil
	}

	n := numTurns * 2
	if n > len(l.turns) {
		n = len(l.turns)
	}

	out := make([]Turn, n)
	copy(out, l.turns[len(l.turns)-n:])
	return out
}

// Clear resets the log to empty. Idempotent.
func (l *ConversationLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
}

// Context renders the entire retained history as "Role: content" lines.
func (l *ConversationLog) Context() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return renderTurns(l.turns)
}

// RecentContext renders the last numTurns logical turns as
// "Role: content" lines. Empty string when the log is empty.
func (l *ConversationLog) RecentContext(numTurns int) string {
	return renderTurns(l.Recent(numTurns))
}

func renderTurns(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, capitalize(t.Role)+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
