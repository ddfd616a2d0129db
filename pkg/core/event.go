package core

import (
	"context"
	"time"
)

// EventType identifies a semantic event emitted during request handling.
type EventType string

const (
	EventRequestStarted   EventType = "request.started"
	EventPreferenceSaved  EventType = "request.preference_saved"
	EventToolSelected     EventType = "request.tool_selected"
	EventRequestCompleted EventType = "request.completed"
	EventRequestFailed    EventType = "request.failed"
)

// Event captures a semantic logging/streaming event.
type Event struct {
	Type      EventType
	Agent     string
	RequestID string
	Timestamp time.Time
	Payload   map[string]any
}

// EventEmitter receives semantic events.
type EventEmitter interface {
	Emit(ctx context.Context, event Event)
}

// NoopEventEmitter is a default no-op implementation.
type NoopEventEmitter struct{}

// Emit implements EventEmitter.
func (NoopEventEmitter) Emit(_ context.Context, _ Event) {}

// NewEvent builds a default event with timestamp.
func NewEvent(eventType EventType, agent string, requestID string, payload map[string]any) Event {
	return Event{
		Type:      eventType,
		Agent:     agent,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
