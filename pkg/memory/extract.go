// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import "strings"

// Preference extraction is deliberately literal keyword matching, not NLP.
// Rules are evaluated in fixed declared order and the first match wins;
// the order is load-bearing and must not be re-derived.

var preferenceTriggers = []string{"i like", "i prefer", "my favorite"}

var knownColors = []string{"red", "blue", "green", "yellow", "purple", "orange"}

type extractionRule struct {
	// topic returns true when the rule's subject is mentioned.
	topic func(msg string) bool
	// extract resolves the (key, value) pair, or ok=false.
	extract func(msg string) (key string, value any, ok bool)
}

var extractionRules = []extractionRule{
	{
		topic: func(msg string) bool {
			return strings.Contains(msg, "programming") || strings.Contains(msg, "language")
		},
		extract: func(msg string) (string, any, bool) {
			if strings.Contains(msg, "python") {
				return "favorite_language", "Python", true
			}
			if strings.Contains(msg, "javascript") {
				return "favorite_language", "JavaScript", true
			}
			return "", nil, false
		},
	},
	{
		topic: func(msg string) bool {
			return strings.Contains(msg, "color")
		},
		extract: func(msg string) (string, any, bool) {
			for _, color := range knownColors {
				if strings.Contains(msg, color) {
					return "favorite_color", color, true
				}
			}
			return "", nil, false
		},
	},
}

// ExtractPreference inspects free text for a preference statement. It is
// a pure function: it returns the proposed (key, value) pair and ok=true,
// or ok=false when nothing is extractable.
func ExtractPreference(message string) (key string, value any, ok bool) {
	msg := strings.ToLower(message)

	triggered := false
	for _, trigger := range preferenceTriggers {
		if strings.Contains(msg, trigger) {
			triggered = true
			break
		}
	}
	if !triggered {
		return "", nil, false
	}

	for _, rule := range extractionRules {
		if !rule.topic(msg) {
			continue
		}
		return rule.extract(msg)
	}
	return "", nil, false
}
