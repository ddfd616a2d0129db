// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"fmt"

	"github.com/mentis-ai/mentis/pkg/errors"
	"github.com/mentis-ai/mentis/pkg/telemetry"
)

// DefaultTraceLimit is how many traces a trace report includes.
const DefaultTraceLimit = 5

// MemoryReport is the memory-focused observability view.
type MemoryReport struct {
	Metrics           telemetry.Stats `json:"metrics"`
	UserPreferences   map[string]any  `json:"user_preferences"`
	ConversationTurns int             `json:"conversation_turns"`
}

// TraceReport is the trace-focused observability view.
type TraceReport struct {
	Metrics      telemetry.Stats   `json:"metrics"`
	RecentTraces []telemetry.Trace `json:"recent_traces"`
}

// MemoryReport returns metrics plus the user's preferences and the
// number of completed logical turns in the conversation log.
func (a *Agent) MemoryReport() MemoryReport {
	return MemoryReport{
		Metrics:           a.metrics.Stats(),
		UserPreferences:   a.store.Preferences(a.userID),
		ConversationTurns: a.log.Len() / 2,
	}
}

// TraceReport returns metrics plus the most recent traces.
func (a *Agent) TraceReport(limit int) TraceReport {
	if limit <= 0 {
		limit = DefaultTraceLimit
	}
	return TraceReport{
		Metrics:      a.metrics.Stats(),
		RecentTraces: a.tracer.RecentTraces(limit),
	}
}

// Report returns the named observability view ("memory" or "traces").
func (a *Agent) Report(section string) (any, error) {
	switch section {
	case "memory":
		return a.MemoryReport(), nil
	case "traces":
		return a.TraceReport(DefaultTraceLimit), nil
	default:
		return nil, errors.New(errors.CodeNotFound,
			fmt.Sprintf("unknown report section %q", section), nil)
	}
}
