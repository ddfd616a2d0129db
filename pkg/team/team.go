// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

// Package team implements a small multi-agent system: a coordinator
// delegates tasks to role-scoped specialists over synchronous message
// passing.
package team

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mentis-ai/mentis/pkg/llm"
)

// Role identifies an agent's function within the team.
type Role string

const (
	RoleCoordinator Role = "coordinator"
	RoleResearcher  Role = "researcher"
	RoleAnalyzer    Role = "analyzer"
	RoleWriter      Role = "writer"
)

// Message types exchanged between agents.
const (
	MessageTask   = "task"
	MessageResult = "result"
)

// Message is one unit of agent-to-agent communication.
type Message struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage builds a timestamped message.
func NewMessage(from, to, content, messageType string) Message {
	return Message{
		From:      from,
		To:        to,
		Content:   content,
		Type:      messageType,
		Timestamp: time.Now().UTC(),
	}
}

// complete calls the provider and absorbs failures into the reply text,
// so one broken completion never halts a team run.
func complete(ctx context.Context, provider llm.Provider, model, prompt string) string {
	resp, err := provider.Chat(ctx, llm.ChatRequest{
		Model:    model,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompt}},
	})
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return resp.Content
}

// Specialist is a role-scoped worker agent. It keeps an inbox of
// received messages and answers task messages with a result message.
type Specialist struct {
	name         string
	role         Role
	capabilities []string
	prompt       func(task string) string
	provider     llm.Provider
	model        string

	mu    sync.Mutex
	inbox []Message
}

// NewSpecialist creates a worker with an explicit prompt builder.
func NewSpecialist(name string, role Role, provider llm.Provider, prompt func(task string) string) *Specialist {
	return &Specialist{
		name:     name,
		role:     role,
		prompt:   prompt,
		provider: provider,
		model:    llm.DefaultGeminiModel,
	}
}

// NewResearcher creates the information-gathering specialist.
func NewResearcher(provider llm.Provider) *Specialist {
	s := NewSpecialist("Researcher", RoleResearcher, provider, func(task string) string {
		return fmt.Sprintf("You are a research agent. Research and provide information about:\n\n%s\n\nProvide a comprehensive research summary.", task)
	})
	s.capabilities = []string{"information_gathering", "fact_checking"}
	return s
}

// NewAnalyzer creates the analysis specialist.
func NewAnalyzer(provider llm.Provider) *Specialist {
	s := NewSpecialist("Analyzer", RoleAnalyzer, provider, func(task string) string {
		return fmt.Sprintf("You are an analysis agent. Analyze and provide insights about:\n\n%s\n\nProvide detailed analysis and key findings.", task)
	})
	s.capabilities = []string{"data_analysis", "pattern_recognition"}
	return s
}

// NewWriter creates the content-writing specialist.
func NewWriter(provider llm.Provider) *Specialist {
	s := NewSpecialist("Writer", RoleWriter, provider, func(task string) string {
		return fmt.Sprintf("You are a writing agent. Create well-written content about:\n\n%s\n\nProvide clear, engaging written content.", task)
	})
	s.capabilities = []string{"content_creation", "writing"}
	return s
}

// Name returns the specialist's name.
func (s *Specialist) Name() string { return s.name }

// Role returns the specialist's role.
func (s *Specialist) Role() Role { return s.role }

// Capabilities returns the declared capabilities.
func (s *Specialist) Capabilities() []string {
	return append([]string(nil), s.capabilities...)
}

// Receive appends a message to the inbox.
func (s *Specialist) Receive(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox = append(s.inbox, msg)
}

// Inbox returns a copy of the received messages.
func (s *Specialist) Inbox() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.inbox...)
}

// Handle answers a task message with a result message addressed to the
// sender. Non-task messages are ignored.
func (s *Specialist) Handle(ctx context.Context, msg Message) (Message, bool) {
	if msg.Type != MessageTask {
		return Message{}, false
	}
	answer := complete(ctx, s.provider, s.model, s.prompt(msg.Content))
	return NewMessage(s.name, msg.From, answer, MessageResult), true
}

// Coordinator registers specialists, delegates tasks to them by role,
// and fans a task out across the whole team.
type Coordinator struct {
	name     string
	provider llm.Provider
	model    string

	mu          sync.Mutex
	specialists []*Specialist
	transcript  []Message
}

// NewCoordinator creates a coordinator with no registered specialists.
func NewCoordinator(provider llm.Provider) *Coordinator {
	return &Coordinator{
		name:     "Coordinator",
		provider: provider,
		model:    llm.DefaultGeminiModel,
	}
}

// NewStandardTeam creates a coordinator with the researcher, analyzer,
// and writer specialists registered.
func NewStandardTeam(provider llm.Provider) *Coordinator {
	c := NewCoordinator(provider)
	c.Register(NewResearcher(provider))
	c.Register(NewAnalyzer(provider))
	c.Register(NewWriter(provider))
	return c
}

// Register adds a specialist to the team.
func (c *Coordinator) Register(s *Specialist) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.specialists = append(c.specialists, s)
}

// Specialists returns the registered specialists in registration order.
func (c *Coordinator) Specialists() []*Specialist {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Specialist(nil), c.specialists...)
}

// Transcript returns every message exchanged so far.
func (c *Coordinator) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.transcript...)
}

func (c *Coordinator) record(msgs ...Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = append(c.transcript, msgs...)
}

func (c *Coordinator) findByRole(role Role) *Specialist {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.specialists {
		if s.role == role {
			return s
		}
	}
	return nil
}

// Delegate sends a task to the first specialist with the given role and
// returns the result content.
func (c *Coordinator) Delegate(ctx context.Context, task string, role Role) (string, error) {
	target := c.findByRole(role)
	if target == nil {
		return "", fmt.Errorf("no agent available with role: %s", role)
	}

	msg := NewMessage(c.name, target.Name(), task, MessageTask)
	target.Receive(msg)
	c.record(msg)

	result, ok := target.Handle(ctx, msg)
	if !ok {
		return "", fmt.Errorf("specialist %s did not answer the task", target.Name())
	}
	c.record(result)
	return result.Content, nil
}

// Coordinate plans the task and then delegates it to every registered
// specialist, returning "Name: result" lines.
func (c *Coordinator) Coordinate(ctx context.Context, task string) (string, error) {
	names := make([]string, 0, len(c.Specialists()))
	for _, s := range c.Specialists() {
		names = append(names, s.Name())
	}

	plan := complete(ctx, c.provider, c.model, fmt.Sprintf(
		"You are coordinating a multi-agent system. Analyze this task and determine which agents should be involved:\n\nTask: %s\n\nAvailable agents: %v\n\nProvide a coordination plan in JSON format with steps and agent assignments.",
		task, names))
	c.record(NewMessage(c.name, c.name, plan, MessageResult))

	var lines []string
	for _, s := range c.Specialists() {
		result, err := c.Delegate(ctx, task, s.Role())
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%s: %s", s.Name(), result))
	}

	return strings.Join(lines, "\n"), nil
}
