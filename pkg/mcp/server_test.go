// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"context"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/mentis-ai/mentis/pkg/tools"
)

func callRequest(name, input string) mcpgo.CallToolRequest {
	req := mcpgo.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = map[string]interface{}{"input": input}
	return req
}

func textContent(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(mcpgo.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestToolHandler_Calculator(t *testing.T) {
	handler := newToolHandler(tools.NewCalculator())

	result, err := handler(context.Background(), callRequest("calculator", "Calculate 25 * 4 + 10"))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %+v", result)
	}
	if got := textContent(t, result); got != "Result: 110" {
		t.Errorf("got %q", got)
	}
}

func TestToolHandler_TextProcessor(t *testing.T) {
	handler := newToolHandler(tools.NewTextProcessor())

	result, err := handler(context.Background(), callRequest("text_processor", "reverse abc"))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if got := textContent(t, result); got != "Reversed: cba esrever" {
		t.Errorf("got %q", got)
	}
}

func TestToolHandler_MissingInput(t *testing.T) {
	handler := newToolHandler(tools.NewCalculator())

	req := mcpgo.CallToolRequest{}
	req.Params.Name = "calculator"

	// No arguments: the tool receives an empty string and reports the
	// failure inside the result text.
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if got := textContent(t, result); got == "" {
		t.Error("expected a textual result")
	}
}

func TestNewServer(t *testing.T) {
	s := NewServer("mentis", "0.1.0")
	s.RegisterRegistry(tools.DefaultRegistry())
	if s.mcpServer == nil {
		t.Fatal("expected an initialized underlying server")
	}
}
