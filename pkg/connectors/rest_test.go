// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package connectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetch(t *testing.T) {
	var gotPath, gotQuery, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHeader = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 1, "title": "hello"}]`))
	}))
	defer srv.Close()

	c := NewREST(
		WithSource("posts", srv.URL, "test posts API"),
		WithAPIKey("secret", "X-Api-Key"),
	)

	result := c.Fetch(context.Background(), "posts", "/posts", map[string]string{"_limit": "5"})
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("got status %d", result.StatusCode)
	}
	if gotPath != "/posts" || gotQuery != "_limit=5" {
		t.Errorf("got path %q query %q", gotPath, gotQuery)
	}
	if gotHeader != "secret" {
		t.Errorf("expected api key header, got %q", gotHeader)
	}

	list, ok := result.Data.([]any)
	if !ok || len(list) != 1 {
		t.Errorf("unexpected data: %#v", result.Data)
	}
}

func TestFetch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/bad-json":
			w.Write([]byte("not json"))
		}
	}))
	defer srv.Close()

	c := NewREST(WithSource("api", srv.URL, "test API"))
	ctx := context.Background()

	if result := c.Fetch(ctx, "nope", "/x", nil); result.Success || !strings.Contains(result.Error, "unknown source") {
		t.Errorf("expected unknown-source error, got %+v", result)
	}
	if result := c.Fetch(ctx, "api", "/missing", nil); result.Success || result.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 failure, got %+v", result)
	}
	if result := c.Fetch(ctx, "api", "/bad-json", nil); result.Success || !strings.Contains(result.Error, "invalid JSON") {
		t.Errorf("expected decode failure, got %+v", result)
	}
}

func TestSources(t *testing.T) {
	c := NewREST(
		WithSource("one", "http://a.example", "first"),
		WithSource("two", "http://b.example", "second"),
	)

	names := c.Sources()
	if len(names) != 2 || names[0] != "one" || names[1] != "two" {
		t.Errorf("unexpected sources: %v", names)
	}

	src, ok := c.Source("one")
	if !ok || src.Description != "first" {
		t.Errorf("unexpected source: %+v ok=%v", src, ok)
	}
}

func TestRESTTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "Spain", "capital": "Madrid"}`))
	}))
	defer srv.Close()

	tool := NewRESTTool(NewREST(WithSource("countries", srv.URL, "country data")))

	if tool.Name() != ToolNameRESTFetch {
		t.Errorf("got name %q", tool.Name())
	}

	out, err := tool.Call(context.Background(), map[string]any{
		"source":   "countries",
		"endpoint": "/name/spain",
	})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	text, ok := out.(string)
	if !ok || !strings.Contains(text, `"capital": "Madrid"`) {
		t.Errorf("unexpected output: %v", out)
	}

	// JSON string input is accepted too.
	out, err = tool.Call(context.Background(), `{"source": "countries", "endpoint": "/all"}`)
	if err != nil {
		t.Fatalf("Call with JSON string failed: %v", err)
	}
	if _, ok := out.(string); !ok {
		t.Errorf("expected string output, got %T", out)
	}

	if _, err := tool.Call(context.Background(), map[string]any{"source": "countries"}); err == nil {
		t.Error("expected error for missing endpoint")
	}

	out, err = tool.Call(context.Background(), map[string]any{"source": "bogus", "endpoint": "/x"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if text, _ := out.(string); !strings.HasPrefix(text, "Error fetching data:") {
		t.Errorf("expected absorbed fetch error, got %v", out)
	}
}
