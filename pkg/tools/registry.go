// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools provides the built-in agent tools and the keyword
// selector that routes user messages to them.
package tools

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mentis-ai/mentis/pkg/core"
	"github.com/mentis-ai/mentis/pkg/errors"
)

// Registry holds named tools for lookup by the agent and the MCP server.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]core.Tool
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]core.Tool)}
}

// Register adds a tool under its own name. Registering the same name
// twice replaces the earlier tool but keeps its position.
func (r *Registry) Register(tool core.Tool) {
	if tool == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (core.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("tool %q is not registered", name), nil)
	}
	return tool, nil
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []core.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// selectorRule binds a set of trigger keywords to a tool name. Rules
// are evaluated in order and the first match wins.
type selectorRule struct {
	tool     string
	keywords []string
}

// Selector routes a user message to a registered tool by substring
// keyword matching against the lowercased message.
type Selector struct {
	registry *Registry
	rules    []selectorRule
}

// NewSelector creates a selector over the given registry with no rules.
func NewSelector(registry *Registry) *Selector {
	return &Selector{registry: registry}
}

// AddRule appends a keyword rule for the named tool. Earlier rules take
// precedence over later ones.
func (s *Selector) AddRule(tool string, keywords ...string) {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	s.rules = append(s.rules, selectorRule{tool: tool, keywords: lowered})
}

// Select returns the first tool whose keywords appear in the message,
// or ok=false when no rule matches.
func (s *Selector) Select(message string) (core.Tool, string, bool) {
	lowered := strings.ToLower(message)
	for _, rule := range s.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				tool, err := s.registry.Get(rule.tool)
				if err != nil {
					continue
				}
				return tool, rule.tool, true
			}
		}
	}
	return nil, "", false
}

// DefaultRegistry returns a registry preloaded with the built-in tools.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewCalculator())
	r.Register(NewTextProcessor())
	return r
}

// DefaultSelector returns the standard routing rules over the built-in
// tools. The calculator rule is checked before the text processor.
func DefaultSelector(registry *Registry) *Selector {
	s := NewSelector(registry)
	s.AddRule(ToolNameCalculator, "calculate", "compute", "math", "add", "multiply")
	s.AddRule(ToolNameTextProcessor, "count", "reverse", "uppercase", "lowercase")
	return s
}
