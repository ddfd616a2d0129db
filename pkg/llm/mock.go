// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"strings"

	"github.com/mentis-ai/mentis/pkg/errors"
)

// mockUsage derives token counts from whitespace word counts, the same
// convention the orchestrator falls back to when a provider reports no
// usage, so metrics assertions in tests line up with real arithmetic.
func mockUsage(req ChatRequest, content string) Usage {
	prompt := 0
	for _, m := range req.Messages {
		prompt += len(strings.Fields(m.Content))
	}
	completion := len(strings.Fields(content))
	return Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

// MockProvider is a test double: it returns Response with word-count
// usage, or Err when set, or defers entirely to ChatFunc.
type MockProvider struct {
	Response string
	Err      error
	ChatFunc func(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Chat implements Provider.
func (m *MockProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &ChatResponse{
		Content: m.Response,
		Usage:   mockUsage(req, m.Response),
	}, nil
}

// FailingMockProvider always fails. With no explicit Err it returns the
// typed completion error a live backend failure produces, so callers
// exercise the same absorbing path as in production.
type FailingMockProvider struct {
	Err error
}

// Chat implements Provider.
func (f *FailingMockProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return nil, errors.New(errors.CodeCompletion, "completion backend unavailable", nil).
		WithRecoverable(true)
}
