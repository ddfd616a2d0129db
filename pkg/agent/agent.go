// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent implements the request orchestrator: it owns the
// conversation log, the durable preference store, tool routing, the
// completion provider, and per-agent telemetry.
package agent

import (
	"errors"
	"log/slog"

	"github.com/mentis-ai/mentis/pkg/core"
	"github.com/mentis-ai/mentis/pkg/llm"
	"github.com/mentis-ai/mentis/pkg/memory"
	"github.com/mentis-ai/mentis/pkg/telemetry"
	"github.com/mentis-ai/mentis/pkg/tools"
)

// DefaultContextTurns is how many recent logical turns are rendered
// into the prompt.
const DefaultContextTurns = 3

var (
	ErrMissingProvider = errors.New("agent provider is required")
	ErrMissingStore    = errors.New("agent store is required")
)

// Agent is a single-user conversational agent.
type Agent struct {
	id           string
	userID       string
	model        string
	systemPrompt string
	contextTurns int

	provider llm.Provider
	log      *memory.ConversationLog
	store    *memory.Store
	archive  *memory.SQLiteArchive
	registry *tools.Registry
	selector *tools.Selector
	metrics  *telemetry.Collector
	tracer   *telemetry.Tracer
	emitter  core.EventEmitter
	logger   *slog.Logger
}

// Option configures an Agent instance.
type Option func(*Agent) error

// New creates an Agent with a required id and options. A completion
// provider and a preference store are required; everything else has
// working defaults.
func New(id string, opts ...Option) (*Agent, error) {
	a := &Agent{
		id:           id,
		userID:       "default",
		model:        llm.DefaultGeminiModel,
		contextTurns: DefaultContextTurns,
		log:          memory.NewConversationLog(memory.DefaultMaxTurns),
		metrics:      telemetry.NewCollector(),
		tracer:       telemetry.NewTracer(),
		emitter:      core.NoopEventEmitter{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if a.id == "" {
		return nil, errors.New("agent id is required")
	}
	if a.provider == nil {
		return nil, ErrMissingProvider
	}
	if a.store == nil {
		return nil, ErrMissingStore
	}
	if a.registry == nil {
		a.registry = tools.DefaultRegistry()
	}
	if a.selector == nil {
		a.selector = tools.DefaultSelector(a.registry)
	}
	return a, nil
}

// WithUserID scopes the agent to a user. Defaults to "default".
func WithUserID(userID string) Option {
	return func(a *Agent) error {
		a.userID = userID
		return nil
	}
}

// WithModel sets the completion model name.
func WithModel(model string) Option {
	return func(a *Agent) error {
		a.model = model
		return nil
	}
}

// WithSystemPrompt sets an optional system message sent before the
// assembled prompt.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) error {
		a.systemPrompt = prompt
		return nil
	}
}

// WithContextTurns sets how many recent logical turns go into the prompt.
func WithContextTurns(n int) Option {
	return func(a *Agent) error {
		if n > 0 {
			a.contextTurns = n
		}
		return nil
	}
}

// WithProvider sets the completion provider.
func WithProvider(provider llm.Provider) Option {
	return func(a *Agent) error {
		a.provider = provider
		return nil
	}
}

// WithStore attaches the durable preference store.
func WithStore(store *memory.Store) Option {
	return func(a *Agent) error {
		a.store = store
		return nil
	}
}

// WithConversationLog replaces the default in-memory conversation log.
func WithConversationLog(log *memory.ConversationLog) Option {
	return func(a *Agent) error {
		a.log = log
		return nil
	}
}

// WithArchive attaches an optional SQLite conversation archive.
func WithArchive(archive *memory.SQLiteArchive) Option {
	return func(a *Agent) error {
		a.archive = archive
		return nil
	}
}

// WithTools sets the tool registry and installs the default routing
// rules over it.
func WithTools(registry *tools.Registry) Option {
	return func(a *Agent) error {
		a.registry = registry
		a.selector = tools.DefaultSelector(registry)
		return nil
	}
}

// WithSelector replaces the tool routing rules.
func WithSelector(selector *tools.Selector) Option {
	return func(a *Agent) error {
		a.selector = selector
		return nil
	}
}

// WithMetrics replaces the default metrics collector.
func WithMetrics(collector *telemetry.Collector) Option {
	return func(a *Agent) error {
		a.metrics = collector
		return nil
	}
}

// WithTracer replaces the default tracer.
func WithTracer(tracer *telemetry.Tracer) Option {
	return func(a *Agent) error {
		a.tracer = tracer
		return nil
	}
}

// WithEmitter attaches a semantic event sink.
func WithEmitter(emitter core.EventEmitter) Option {
	return func(a *Agent) error {
		a.emitter = emitter
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) error {
		a.logger = logger
		return nil
	}
}

// ID returns the agent identifier.
func (a *Agent) ID() string { return a.id }

// UserID returns the user this agent is scoped to.
func (a *Agent) UserID() string { return a.userID }

// Conversation returns the in-memory conversation log.
func (a *Agent) Conversation() *memory.ConversationLog { return a.log }

// Store returns the durable preference store.
func (a *Agent) Store() *memory.Store { return a.store }

// Metrics returns the agent's metrics collector.
func (a *Agent) Metrics() *telemetry.Collector { return a.metrics }

// Tracer returns the agent's tracer.
func (a *Agent) Tracer() *telemetry.Tracer { return a.tracer }

// Tools returns the tool registry.
func (a *Agent) Tools() *tools.Registry { return a.registry }

// Reset clears the in-memory conversation log. Durable state is kept.
func (a *Agent) Reset() {
	a.log.Clear()
}
