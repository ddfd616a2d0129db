// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentis.yaml")
	writeConfig(t, path, "llm:\n  model: first\n")

	w, err := NewWatcher(path, WithWatchInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	if w.Config().LLM.Model != "first" {
		t.Fatalf("got initial model %q", w.Config().LLM.Model)
	}

	changed := make(chan *Config, 1)
	w.OnChange(func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// mtime resolution can be coarse.
	time.Sleep(1100 * time.Millisecond)
	writeConfig(t, path, "llm:\n  model: second\n")

	select {
	case cfg := <-changed:
		if cfg.LLM.Model != "second" {
			t.Errorf("got reloaded model %q", cfg.LLM.Model)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_KeepsConfigOnInvalidReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentis.yaml")
	writeConfig(t, path, "llm:\n  model: good\n")

	w, err := NewWatcher(path, WithWatchInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)
	writeConfig(t, path, "llm:\n  provider: banana\n")

	if w.changed() {
		w.reload()
	}

	if w.Config().LLM.Model != "good" {
		t.Errorf("expected previous config to survive, got %+v", w.Config().LLM)
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentis.yaml")
	writeConfig(t, path, "llm:\n  model: idle\n")

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		w.Stop()
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without a running watch loop")
	}
}

func TestWatcher_DoubleStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentis.yaml")
	writeConfig(t, path, "llm:\n  model: idle\n")

	w, err := NewWatcher(path, WithWatchInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	w.Start(context.Background())
	w.Stop()
	w.Stop()
}

func TestNewWatcher_InvalidInitialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentis.yaml")
	writeConfig(t, path, "llm:\n  provider: banana\n")

	if _, err := NewWatcher(path); err == nil {
		t.Error("expected error for invalid initial config")
	}
}
