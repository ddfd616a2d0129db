// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/mentis-ai/mentis/pkg/errors"
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetryProvider_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	inner := &MockProvider{ChatFunc: func(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
		calls++
		if calls < 3 {
			return nil, stderrors.New("transient")
		}
		return &ChatResponse{Content: "ok"}, nil
	}}

	p := NewRetryProvider(inner, fastRetryConfig(3))
	resp, err := p.Chat(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("got content %q", resp.Content)
	}
	if calls != 3 {
		t.Errorf("got %d calls, want 3", calls)
	}
}

func TestRetryProvider_ExhaustsAttempts(t *testing.T) {
	calls := 0
	inner := &MockProvider{ChatFunc: func(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
		calls++
		return nil, stderrors.New("still failing")
	}}

	p := NewRetryProvider(inner, fastRetryConfig(4))
	if _, err := p.Chat(context.Background(), ChatRequest{}); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 4 {
		t.Errorf("got %d calls, want 4", calls)
	}
}

func TestRetryProvider_StopsOnNonRecoverable(t *testing.T) {
	calls := 0
	fatal := errors.New(errors.CodeInvalidInput, "bad request", nil).WithRecoverable(false)
	inner := &MockProvider{ChatFunc: func(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
		calls++
		return nil, fatal
	}}

	p := NewRetryProvider(inner, fastRetryConfig(5))
	_, err := p.Chat(context.Background(), ChatRequest{})
	if err != fatal {
		t.Fatalf("got %v, want the non-recoverable error", err)
	}
	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}

func TestRetryProvider_StopsOnWrappedNonRecoverable(t *testing.T) {
	calls := 0
	fatal := errors.New(errors.CodeInvalidInput, "bad request", nil).WithRecoverable(false)
	inner := &MockProvider{ChatFunc: func(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
		calls++
		return nil, fmt.Errorf("completion call: %w", fatal)
	}}

	p := NewRetryProvider(inner, fastRetryConfig(5))
	_, err := p.Chat(context.Background(), ChatRequest{})
	if !stderrors.Is(err, fatal) {
		t.Fatalf("got %v, want the wrapped non-recoverable error", err)
	}
	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}

func TestRetryProvider_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	inner := &MockProvider{ChatFunc: func(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
		cancel()
		return nil, stderrors.New("transient")
	}}

	cfg := fastRetryConfig(3)
	cfg.InitialDelay = time.Second
	p := NewRetryProvider(inner, cfg)

	_, err := p.Chat(ctx, ChatRequest{})
	ae, ok := err.(*errors.AgentError)
	if !ok {
		t.Fatalf("got %T, want *errors.AgentError", err)
	}
	if ae.Code != errors.CodeCompletion {
		t.Errorf("got code %s", ae.Code)
	}
}
