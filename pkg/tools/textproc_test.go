// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"testing"
)

func TestDetectOperation(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{message: "How many characters are in this?", want: OpCountChars},
		{message: "Reverse this sentence please", want: OpReverse},
		{message: "Make this uppercase", want: OpUppercase},
		{message: "make THIS lowercase", want: OpLowercase},
		{message: "Count the words here", want: OpCountWords},
		{message: "no keyword at all", want: OpCountWords},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := DetectOperation(tt.message); got != tt.want {
				t.Errorf("DetectOperation(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestTextProcessor_Process(t *testing.T) {
	proc := NewTextProcessor()
	tests := []struct {
		name      string
		text      string
		operation string
		want      string
	}{
		{name: "word count", text: "one two three", operation: OpCountWords, want: "Word count: 3"},
		{name: "char count", text: "abc", operation: OpCountChars, want: "Character count: 3"},
		{name: "reverse", text: "abc", operation: OpReverse, want: "Reversed: cba"},
		{name: "uppercase", text: "abc", operation: OpUppercase, want: "Uppercase: ABC"},
		{name: "lowercase", text: "ABC", operation: OpLowercase, want: "Lowercase: abc"},
		{name: "unknown", text: "abc", operation: "rot13", want: "Unknown operation: rot13"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := proc.Process(tt.text, tt.operation); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextProcessor_Call(t *testing.T) {
	proc := NewTextProcessor()

	got, err := proc.Call(context.Background(), "Count the words in this sentence")
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if got != "Word count: 6" {
		t.Errorf("got %q", got)
	}

	if _, err := proc.Call(context.Background(), 3.14); err == nil {
		t.Fatal("expected error for non-string input")
	}
}
