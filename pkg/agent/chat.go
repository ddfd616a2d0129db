// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/mentis-ai/mentis/pkg/core"
	"github.com/mentis-ai/mentis/pkg/errors"
	"github.com/mentis-ai/mentis/pkg/llm"
	"github.com/mentis-ai/mentis/pkg/memory"
	"github.com/mentis-ai/mentis/pkg/telemetry"
)

// tracerName identifies this package on OTel spans, mirroring the
// meter name used by the metrics collector.
const tracerName = "mentis/agent"

// Result is the outcome of one handled message. A failed completion is
// reported inside Response ("Error: ..."), not as a Go error: the agent
// absorbs downstream failures so a session can continue.
type Result struct {
	Query     string `json:"query"`
	Response  string `json:"response"`
	RequestID string `json:"request_id"`
	ToolUsed  string `json:"tool_used,omitempty"`
}

// Chat handles one user message end to end: preference extraction,
// conversation logging, tool routing, prompt assembly, the completion
// call, and telemetry.
func (a *Agent) Chat(ctx context.Context, message string) (Result, error) {
	ctx, requestID := core.EnsureRequestID(ctx)
	ctx = core.WithUserID(ctx, a.userID)
	start := time.Now()

	span := a.tracer.Start("agent.chat", requestID)
	span.SetTag("user_id", a.userID)

	// The in-process tracer above feeds the observability report; this
	// span feeds whatever exporter telemetry.Init configured, and its
	// context lets the slog handler stamp trace ids onto log lines.
	attrs := append(telemetry.RequestAttributes(requestID, a.userID),
		attribute.String(telemetry.AttrAgentID, a.id),
		attribute.String(telemetry.AttrLLMModel, a.model),
	)
	ctx, otelSpan := otel.Tracer(tracerName).Start(ctx, "agent.chat",
		oteltrace.WithAttributes(attrs...))
	defer otelSpan.End()

	a.emitter.Emit(ctx, core.NewEvent(core.EventRequestStarted, a.id, requestID, map[string]any{
		"user_id": a.userID,
	}))
	a.logger.InfoContext(ctx, "handling message", "agent_id", a.id, "user_id", a.userID)

	if key, value, ok := memory.ExtractPreference(message); ok {
		if err := a.store.SavePreference(a.userID, key, value); err != nil {
			a.logger.WarnContext(ctx, "preference not persisted", "key", key, "error", err)
		}
		span.LogEvent("preference saved", map[string]any{"key": key, "value": value})
		a.emitter.Emit(ctx, core.NewEvent(core.EventPreferenceSaved, a.id, requestID, map[string]any{
			"key": key,
		}))
	}

	a.log.Append(memory.RoleUser, message)

	var toolResult, toolUsed string
	if tool, tag, ok := a.selector.Select(message); ok {
		toolUsed = tag
		span.SetTag("tool", tag)
		otelSpan.SetAttributes(attribute.String(telemetry.AttrToolName, tag))
		a.emitter.Emit(ctx, core.NewEvent(core.EventToolSelected, a.id, requestID, map[string]any{
			"tool": tag,
		}))
		out, err := tool.Call(ctx, message)
		if err != nil {
			// Tool failures flow into the prompt as text so the model
			// can explain them to the user.
			toolResult = fmt.Sprintf("Tool error: %v", err)
			span.LogEvent("tool failed", map[string]any{"tool": tag, "error": err.Error()})
			a.logger.WarnContext(ctx, "tool execution failed", "tool", tag, "error", err)
		} else {
			toolResult = fmt.Sprint(out)
			span.LogEvent("tool executed", map[string]any{"tool": tag})
		}
	}

	prompt := a.buildPrompt(message, toolResult)

	resp, err := a.provider.Chat(ctx, llm.ChatRequest{
		Model:    a.model,
		Messages: a.promptMessages(prompt),
	})
	if err != nil {
		ae := errors.New(errors.CodeCompletion, "completion call failed", err).
			WithContext("request_id", requestID)
		a.logger.ErrorContext(ctx, "completion failed", "error", ae)

		a.metrics.Record(ctx, telemetry.Sample{
			Success: false,
			Latency: time.Since(start).Seconds(),
			Tag:     string(ae.Code),
		})
		span.SetTag("error", true)
		span.SetTag("error_code", string(ae.Code))
		a.tracer.Finish(span, requestID)
		otelSpan.SetAttributes(telemetry.ErrorAttributes(ae)...)
		otelSpan.RecordError(err)
		otelSpan.SetStatus(codes.Error, ae.Message)
		a.emitter.Emit(ctx, core.NewEvent(core.EventRequestFailed, a.id, requestID, map[string]any{
			"error": err.Error(),
		}))

		return Result{
			Query:     message,
			Response:  fmt.Sprintf("Error: %v", err),
			RequestID: requestID,
			ToolUsed:  toolUsed,
		}, nil
	}

	a.log.Append(memory.RoleAssistant, resp.Content)
	if err := a.store.AddConversation(a.userID, message, resp.Content); err != nil {
		a.logger.WarnContext(ctx, "conversation not persisted", "error", err)
	}
	if a.archive != nil {
		if err := a.archive.Append(ctx, a.userID, message, resp.Content); err != nil {
			a.logger.WarnContext(ctx, "conversation not archived", "error", err)
		}
	}

	tokens := resp.Usage.TotalTokens
	if tokens == 0 {
		tokens = estimateTokens(message, resp.Content)
	}

	a.metrics.Record(ctx, telemetry.Sample{
		Success: true,
		Latency: time.Since(start).Seconds(),
		Tokens:  tokens,
		Tag:     toolUsed,
	})
	span.SetTag("tokens", tokens)
	a.tracer.Finish(span, requestID)
	otelSpan.SetAttributes(attribute.Int(telemetry.AttrLLMTokensTotal, tokens))
	a.emitter.Emit(ctx, core.NewEvent(core.EventRequestCompleted, a.id, requestID, map[string]any{
		"tool": toolUsed,
	}))

	return Result{
		Query:     message,
		Response:  resp.Content,
		RequestID: requestID,
		ToolUsed:  toolUsed,
	}, nil
}

// buildPrompt assembles the fixed prompt layout: preferences, recent
// conversation, tool result, then the raw message, joined by blank
// lines. Absent blocks are skipped.
func (a *Agent) buildPrompt(message, toolResult string) string {
	var blocks []string

	prefs := a.store.Preferences(a.userID)
	if len(prefs) > 0 {
		keys := make([]string, 0, len(prefs))
		for k := range prefs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s: %v", k, prefs[k]))
		}
		blocks = append(blocks, "User preferences: "+strings.Join(pairs, ", "))
	}

	if recent := a.log.RecentContext(a.contextTurns); recent != "" {
		blocks = append(blocks, "Recent conversation:\n"+recent)
	}

	if toolResult != "" {
		blocks = append(blocks, "Tool result: "+toolResult)
	}

	blocks = append(blocks, "User message: "+message)
	return strings.Join(blocks, "\n\n")
}

func (a *Agent) promptMessages(prompt string) []llm.Message {
	var msgs []llm.Message
	if a.systemPrompt != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: a.systemPrompt})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: prompt})
}

// estimateTokens is the whitespace-word fallback used when the provider
// reports no usage.
func estimateTokens(message, response string) int {
	return len(strings.Fields(message)) + len(strings.Fields(response))
}
