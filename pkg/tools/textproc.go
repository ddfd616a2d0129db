// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mentis-ai/mentis/pkg/errors"
)

// ToolNameTextProcessor is the registry name of the text tool.
const ToolNameTextProcessor = "text_processor"

// Text operations understood by the processor.
const (
	OpCountWords = "count_words"
	OpCountChars = "count_chars"
	OpReverse    = "reverse"
	OpUppercase  = "uppercase"
	OpLowercase  = "lowercase"
)

// TextProcessor applies simple text transformations to a message. The
// operation is inferred from keywords in the message itself.
type TextProcessor struct{}

// NewTextProcessor creates the text tool.
func NewTextProcessor() *TextProcessor {
	return &TextProcessor{}
}

// Name implements core.Tool.
func (t *TextProcessor) Name() string { return ToolNameTextProcessor }

// Call infers the operation from the message and applies it to the
// whole message. The input must be a string.
func (t *TextProcessor) Call(ctx context.Context, input any) (any, error) {
	message, ok := input.(string)
	if !ok {
		return nil, errors.New(errors.CodeInvalidInput, fmt.Sprintf("text processor expects a string input, got %T", input), nil)
	}
	return t.Process(message, DetectOperation(message)), nil
}

// DetectOperation picks the text operation implied by the message.
// Word counting is the default when no other keyword appears.
func DetectOperation(message string) string {
	lowered := strings.ToLower(message)
	switch {
	case strings.Contains(lowered, "characters"):
		return OpCountChars
	case strings.Contains(lowered, "reverse"):
		return OpReverse
	case strings.Contains(lowered, "uppercase"):
		return OpUppercase
	case strings.Contains(lowered, "lowercase"):
		return OpLowercase
	default:
		return OpCountWords
	}
}

// Process applies the named operation to the text.
func (t *TextProcessor) Process(text, operation string) string {
	switch operation {
	case OpCountWords:
		return fmt.Sprintf("Word count: %d", len(strings.Fields(text)))
	case OpCountChars:
		return fmt.Sprintf("Character count: %d", len([]rune(text)))
	case OpReverse:
		return fmt.Sprintf("Reversed: %s", reverseString(text))
	case OpUppercase:
		return fmt.Sprintf("Uppercase: %s", strings.ToUpper(text))
	case OpLowercase:
		return fmt.Sprintf("Lowercase: %s", strings.ToLower(text))
	default:
		return fmt.Sprintf("Unknown operation: %s", operation)
	}
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
