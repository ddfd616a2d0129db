package llm

import (
	"context"
	"testing"

	agenterrors "github.com/mentis-ai/mentis/pkg/errors"
)

func TestMockProvider(t *testing.T) {
	mock := &MockProvider{Response: "Hello world"}
	resp, err := mock.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "Hi there friend"}},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "Hello world" {
		t.Errorf("Expected 'Hello world', got '%s'", resp.Content)
	}
	// Usage follows the word-count convention the orchestrator uses as
	// its fallback estimate.
	if resp.Usage.PromptTokens != 3 {
		t.Errorf("expected 3 prompt tokens, got %d", resp.Usage.PromptTokens)
	}
	if resp.Usage.CompletionTokens != 2 {
		t.Errorf("expected 2 completion tokens, got %d", resp.Usage.CompletionTokens)
	}
	if resp.Usage.TotalTokens != 5 {
		t.Errorf("expected 5 total tokens, got %d", resp.Usage.TotalTokens)
	}
}

func TestFailingMockProvider_DefaultError(t *testing.T) {
	mock := &FailingMockProvider{}
	_, err := mock.Chat(context.Background(), ChatRequest{})
	if err == nil {
		t.Fatal("expected an error")
	}
	ae := agenterrors.AsAgentError(err)
	if ae.Code != agenterrors.CodeCompletion {
		t.Errorf("expected code %s, got %s", agenterrors.CodeCompletion, ae.Code)
	}
	if !ae.Recoverable {
		t.Error("default failure should be recoverable")
	}
}

func TestScriptedMockProvider(t *testing.T) {
	mock := NewScriptedMockProvider("first", "second")

	resp, err := mock.Chat(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "first" {
		t.Errorf("expected 'first', got %q", resp.Content)
	}

	resp, _ = mock.Chat(context.Background(), ChatRequest{})
	if resp.Content != "second" {
		t.Errorf("expected 'second', got %q", resp.Content)
	}

	if _, err := mock.Chat(context.Background(), ChatRequest{}); err == nil {
		t.Error("expected error when responses are exhausted")
	}

	if mock.CallCount != 3 {
		t.Errorf("expected 3 calls, got %d", mock.CallCount)
	}
}
