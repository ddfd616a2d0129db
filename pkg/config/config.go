// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads Mentis configuration from defaults, an optional
// YAML file, and MENTIS_-prefixed environment variables, in that order.
package config

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the environment variable prefix
// (MENTIS_LLM_API_KEY -> llm.api_key).
const EnvPrefix = "MENTIS_"

type Config struct {
	Log       LogConfig       `koanf:"log"`
	LLM       LLMConfig       `koanf:"llm"`
	Agent     AgentConfig     `koanf:"agent"`
	Memory    MemoryConfig    `koanf:"memory"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type LLMConfig struct {
	Provider string `koanf:"provider"` // gemini, mock
	Model    string `koanf:"model"`
	BaseURL  string `koanf:"base_url"`
	APIKey   string `koanf:"api_key"`
	Retries  int    `koanf:"retries"` // total attempts per completion
}

type AgentConfig struct {
	ID           string `koanf:"id"`
	UserID       string `koanf:"user_id"`
	SystemPrompt string `koanf:"system_prompt"`
	ContextTurns int    `koanf:"context_turns"`
	MaxTurns     int    `koanf:"max_turns"`
}

type MemoryConfig struct {
	Path           string `koanf:"path"`
	ArchiveEnabled bool   `koanf:"archive_enabled"`
	ArchivePath    string `koanf:"archive_path"`
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

// Load builds the configuration. A missing path skips the file layer;
// environment variables always win.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("llm.provider", "gemini")
	k.Set("llm.model", "gemini-pro")
	k.Set("llm.retries", 3)
	k.Set("agent.id", "mentis")
	k.Set("agent.user_id", "default")
	k.Set("agent.context_turns", 3)
	k.Set("agent.max_turns", 10)
	k.Set("memory.path", "agent_memory.json")
	k.Set("memory.archive_enabled", false)
	k.Set("memory.archive_path", "conversations.db")
	k.Set("telemetry.exporter", "stdout")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// MENTIS_LLM_API_KEY -> llm.api_key. The tree is two levels deep,
	// so only the first underscore separates section from key.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints after merging all layers.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Log),
		validation.Field(&c.LLM),
		validation.Field(&c.Agent),
		validation.Field(&c.Telemetry),
	)
}

func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level,
			validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&l.Format,
			validation.In("text", "json")),
	)
}

func (l LLMConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Provider,
			validation.Required, validation.In("gemini", "mock")),
		validation.Field(&l.Model, validation.Required),
		validation.Field(&l.Retries, validation.Min(0)),
	)
}

func (a AgentConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.ContextTurns, validation.Min(1)),
		validation.Field(&a.MaxTurns, validation.Min(1)),
	)
}

func (t TelemetryConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Exporter,
			validation.Required, validation.In("stdout", "otlp")),
		validation.Field(&t.OTLPEndpoint,
			validation.Required.When(t.Exporter == "otlp")),
	)
}
