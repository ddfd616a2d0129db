// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxTraceHistory bounds the retained trace records.
const maxTraceHistory = 1000

// SpanLog is one timestamped log entry attached to a span.
type SpanLog struct {
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Span is a timed, tagged record of one logical operation. It is mutated
// through SetTag/LogEvent while in flight and finalized exactly once by
// Tracer.Finish; finalized spans are never mutated again.
type Span struct {
	SpanID    string         `json:"span_id"`
	ParentID  string         `json:"parent_id,omitempty"`
	Name      string         `json:"name"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Tags      map[string]any `json:"tags"`
	Logs      []SpanLog      `json:"logs"`
}

// SetTag sets a tag on the span. Last write wins on key collisions.
func (s *Span) SetTag(key string, value any) {
	s.Tags[key] = value
}

// LogEvent appends a log entry with the current timestamp.
func (s *Span) LogEvent(message string, fields map[string]any) {
	s.Logs = append(s.Logs, SpanLog{
		Message:   message,
		Timestamp: time.Now().UTC(),
		Fields:    fields,
	})
}

// Duration returns end−start once finished (stable across calls), or
// now−start while the span is in flight.
func (s *Span) Duration() time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}

// Finished reports whether the span has been finalized.
func (s *Span) Finished() bool {
	return s.EndTime != nil
}

// Trace wraps one or more finished spans under a correlation id.
type Trace struct {
	TraceID   string    `json:"trace_id"`
	Spans     []*Span   `json:"spans"`
	Timestamp time.Time `json:"timestamp"`
}

// Tracer records spans for one agent instance and keeps a bounded
// history of finished traces.
type Tracer struct {
	mu     sync.Mutex
	traces []Trace
}

// NewTracer creates an empty tracer.
func NewTracer() *Tracer {
	return &Tracer{}
}

// Start begins a span for the named operation, tagged with the request id.
func (t *Tracer) Start(operation, requestID string) *Span {
	span := &Span{
		SpanID:    uuid.New().String(),
		Name:      operation,
		StartTime: time.Now(),
		Tags:      make(map[string]any),
	}
	if requestID != "" {
		span.SetTag("request_id", requestID)
	}
	return span
}

// StartChild begins a span parented to another span.
func (t *Tracer) StartChild(parent *Span, operation string) *Span {
	span := t.Start(operation, "")
	if parent != nil {
		span.ParentID = parent.SpanID
	}
	return span
}

// Finish finalizes the span, wraps it in a trace record (generating a
// trace id when none is given), and appends it to the history. Finishing
// an already-finished span leaves its end time untouched.
func (t *Tracer) Finish(span *Span, traceID string) Trace {
	if span.EndTime == nil {
		now := time.Now()
		span.EndTime = &now
	}
	if traceID == "" {
		traceID = uuid.New().String()
	}

	trace := Trace{
		TraceID:   traceID,
		Spans:     []*Span{span},
		Timestamp: time.Now().UTC(),
	}

	t.mu.Lock()
	t.traces = append(t.traces, trace)
	if len(t.traces) > maxTraceHistory {
		t.traces = append(t.traces[:0], t.traces[len(t.traces)-maxTraceHistory:]...)
	}
	t.mu.Unlock()

	return trace
}

// RecentTraces returns the most recent limit traces in chronological order.
func (t *Tracer) RecentTraces(limit int) []Trace {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limit <= 0 || len(t.traces) == 0 {
		return nil
	}
	if limit > len(t.traces) {
		limit = len(t.traces)
	}
	out := make([]Trace, limit)
	copy(out, t.traces[len(t.traces)-limit:])
	return out
}
