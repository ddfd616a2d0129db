// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

// Package evaluation runs functional check suites against a live agent
// and aggregates the outcomes into a report.
package evaluation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mentis-ai/mentis/pkg/agent"
	"github.com/mentis-ai/mentis/pkg/tools"
)

// CheckResult is the outcome of one evaluated query.
type CheckResult struct {
	Name     string `json:"name"`
	Query    string `json:"query,omitempty"`
	Expected string `json:"expected,omitempty"`
	Response string `json:"response,omitempty"`
	Passed   bool   `json:"passed"`
}

// SuiteResult aggregates the checks of one suite. SuccessRate uses one
// decimal place ("75.0%").
type SuiteResult struct {
	Name                string        `json:"test_name"`
	Passed              int           `json:"passed"`
	Total               int           `json:"total"`
	SuccessRate         string        `json:"success_rate"`
	AverageResponseTime string        `json:"average_response_time,omitempty"`
	Results             []CheckResult `json:"results"`
}

// Overall summarizes a whole evaluation run. A suite counts as passed
// when every one of its checks passed.
type Overall struct {
	TotalSuites  int    `json:"total_tests"`
	PassedSuites int    `json:"passed_tests"`
	SuccessRate  string `json:"success_rate"`
}

// Report is the full evaluation output.
type Report struct {
	Suites  []SuiteResult `json:"suites"`
	Overall Overall       `json:"overall"`
}

// Evaluator drives check suites against one agent.
type Evaluator struct {
	agent *agent.Agent
}

// New creates an evaluator for the given agent.
func New(a *agent.Agent) *Evaluator {
	return &Evaluator{agent: a}
}

func rate(passed, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(passed)/float64(total)*100)
}

func finishSuite(name string, results []CheckResult) SuiteResult {
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	return SuiteResult{
		Name:        name,
		Passed:      passed,
		Total:       len(results),
		SuccessRate: rate(passed, len(results)),
		Results:     results,
	}
}

// ToolUse verifies that tool-triggering queries route to the expected
// tool.
func (e *Evaluator) ToolUse(ctx context.Context) SuiteResult {
	cases := []struct {
		query string
		tool  string
	}{
		{query: "Calculate 10 + 5", tool: tools.ToolNameCalculator},
		{query: "Count words in: Hello world", tool: tools.ToolNameTextProcessor},
	}

	var results []CheckResult
	for _, tc := range cases {
		result, err := e.agent.Chat(ctx, tc.query)
		check := CheckResult{
			Name:     "tool routing",
			Query:    tc.query,
			Expected: tc.tool,
		}
		if err == nil {
			check.Response = truncate(result.Response, 100)
			check.Passed = result.ToolUsed == tc.tool
		}
		results = append(results, check)
	}
	return finishSuite("Tool Use", results)
}

// Memory verifies that conversational context survives a turn and that
// stated preferences land in the durable store.
func (e *Evaluator) Memory(ctx context.Context) SuiteResult {
	var results []CheckResult

	if _, err := e.agent.Chat(ctx, "My name is Alice"); err == nil {
		reply, err := e.agent.Chat(ctx, "What's my name?")
		results = append(results, CheckResult{
			Name:     "short-term memory",
			Query:    "What's my name?",
			Expected: "alice",
			Response: truncate(reply.Response, 100),
			Passed:   err == nil && strings.Contains(strings.ToLower(reply.Response), "alice"),
		})
	} else {
		results = append(results, CheckResult{Name: "short-term memory"})
	}

	_, err := e.agent.Chat(ctx, "I like Python programming")
	prefs := e.agent.Store().Preferences(e.agent.UserID())
	results = append(results, CheckResult{
		Name:     "long-term memory",
		Query:    "I like Python programming",
		Expected: "favorite_language=Python",
		Passed:   err == nil && prefs["favorite_language"] == "Python",
	})

	return finishSuite("Memory", results)
}

// Observability verifies that handled requests show up in the metrics
// report.
func (e *Evaluator) Observability(ctx context.Context) SuiteResult {
	var results []CheckResult

	for _, q := range []string{"Hello", "Calculate 5 + 3"} {
		if _, err := e.agent.Chat(ctx, q); err != nil {
			results = append(results, CheckResult{Name: "request handled", Query: q})
			return finishSuite("Observability", results)
		}
	}

	report := e.agent.MemoryReport()
	results = append(results, CheckResult{
		Name:   "metrics recorded",
		Passed: report.Metrics.Message == "" && report.Metrics.TotalRequests > 0,
	})
	return finishSuite("Observability", results)
}

// Performance runs the given queries and measures wall-clock latency.
// A query passes when the agent does not absorb a completion failure.
func (e *Evaluator) Performance(ctx context.Context, queries []string) SuiteResult {
	var results []CheckResult
	var totalLatency time.Duration

	for _, q := range queries {
		start := time.Now()
		result, err := e.agent.Chat(ctx, q)
		elapsed := time.Since(start)
		totalLatency += elapsed

		results = append(results, CheckResult{
			Name:     "query latency",
			Query:    q,
			Response: truncate(result.Response, 100),
			Passed:   err == nil && !strings.HasPrefix(result.Response, "Error:"),
		})
	}

	suite := finishSuite("Performance", results)
	if len(queries) > 0 {
		avg := totalLatency.Seconds() / float64(len(queries))
		suite.AverageResponseTime = fmt.Sprintf("%.3fs", avg)
	}
	return suite
}

// DefaultPerformanceQueries is the standard performance workload.
var DefaultPerformanceQueries = []string{
	"What is AI?",
	"Calculate 10 * 5",
	"Count words in: Hello world",
	"Explain machine learning",
	"What is 100 / 4?",
}

// RunAll executes every suite and aggregates the overall score.
func (e *Evaluator) RunAll(ctx context.Context) Report {
	suites := []SuiteResult{
		e.ToolUse(ctx),
		e.Memory(ctx),
		e.Observability(ctx),
		e.Performance(ctx, DefaultPerformanceQueries),
	}

	passed := 0
	for _, s := range suites {
		if s.Total > 0 && s.Passed == s.Total {
			passed++
		}
	}

	return Report{
		Suites: suites,
		Overall: Overall{
			TotalSuites:  len(suites),
			PassedSuites: passed,
			SuccessRate:  rate(passed, len(suites)),
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
