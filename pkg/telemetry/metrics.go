// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides metrics, tracing, and logging for Mentis agents.
package telemetry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// NoDataMessage is the sentinel returned by Stats before any sample
// has been recorded.
const NoDataMessage = "No requests recorded"

// Sample is one recorded request outcome. Consumed immediately into
// aggregate counters; only the raw latency is retained (for percentiles).
type Sample struct {
	Success bool
	Latency float64 // seconds
	Tokens  int
	Tag     string // tool name or error kind; optional
}

// Stats is a point-in-time aggregate snapshot. String fields use fixed
// formatting (percentages %.2f, durations %.3f) so reports are stable.
type Stats struct {
	Message             string         `json:"message,omitempty"`
	TotalRequests       int            `json:"total_requests,omitempty"`
	SuccessRate         string         `json:"success_rate,omitempty"`
	ErrorRate           string         `json:"error_rate,omitempty"`
	AverageResponseTime string         `json:"average_response_time_seconds,omitempty"`
	P50ResponseTime     string         `json:"p50_response_time_seconds,omitempty"`
	P95ResponseTime     string         `json:"p95_response_time_seconds,omitempty"`
	TotalTokens         int            `json:"total_tokens"`
	TagCounts           map[string]int `json:"tags,omitempty"`
}

// Collector aggregates request metrics for one agent instance. It is an
// explicitly constructed object, never a global: tests instantiate
// isolated collectors.
//
// The raw latency list grows without bound; acceptable for the intended
// request volumes and kept so percentiles stay exact.
type Collector struct {
	mu           sync.Mutex
	totalCount   int
	successCount int
	errorCount   int
	totalLatency float64
	totalTokens  int
	tagCounts    map[string]int
	latencies    []float64

	// Optional OTel mirror; nil instruments are skipped.
	requestCounter metric.Int64Counter
	latencyHist    metric.Float64Histogram
	tokenCounter   metric.Int64Counter
}

// NewCollector creates an empty metrics collector.
func NewCollector() *Collector {
	return &Collector{tagCounts: make(map[string]int)}
}

// NewCollectorWithMeter creates a collector that also mirrors samples
// onto OpenTelemetry instruments from the global meter provider.
func NewCollectorWithMeter(scope string) (*Collector, error) {
	c := NewCollector()
	meter := otel.Meter(scope)

	var err error
	c.requestCounter, err = meter.Int64Counter(
		"mentis.requests.total",
		metric.WithDescription("Total requests by outcome and tag"),
	)
	if err != nil {
		return nil, err
	}
	c.latencyHist, err = meter.Float64Histogram(
		"mentis.request.duration",
		metric.WithDescription("Request latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	c.tokenCounter, err = meter.Int64Counter(
		"mentis.tokens.total",
		metric.WithDescription("Estimated tokens consumed"),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Record adds one sample: O(1) counter updates plus one latency append.
func (c *Collector) Record(ctx context.Context, sample Sample) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.totalCount++
	c.totalLatency += sample.Latency
	c.totalTokens += sample.Tokens
	c.latencies = append(c.latencies, sample.Latency)
	if sample.Success {
		c.successCount++
	} else {
		c.errorCount++
	}
	if sample.Tag != "" {
		c.tagCounts[sample.Tag]++
	}
	c.mu.Unlock()

	c.mirror(ctx, sample)
}

func (c *Collector) mirror(ctx context.Context, sample Sample) {
	attrs := []attribute.KeyValue{
		attribute.Bool(AttrRequestSuccess, sample.Success),
	}
	if sample.Tag != "" {
		attrs = append(attrs, attribute.String(AttrRequestTag, sample.Tag))
	}
	opt := metric.WithAttributes(attrs...)

	if c.requestCounter != nil {
		c.requestCounter.Add(ctx, 1, opt)
	}
	if c.latencyHist != nil {
		c.latencyHist.Record(ctx, sample.Latency, opt)
	}
	if c.tokenCounter != nil && sample.Tokens > 0 {
		c.tokenCounter.Add(ctx, int64(sample.Tokens), opt)
	}
}

// Stats returns an aggregate snapshot. Before any sample it returns the
// no-data sentinel.
func (c *Collector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.totalCount == 0 {
		return Stats{Message: NoDataMessage}
	}

	successRate := float64(c.successCount) / float64(c.totalCount) * 100
	avg := c.totalLatency / float64(c.totalCount)
	p50, p95 := percentiles(c.latencies)

	tags := make(map[string]int, len(c.tagCounts))
	for k, v := range c.tagCounts {
		tags[k] = v
	}

	return Stats{
		TotalRequests:       c.totalCount,
		SuccessRate:         fmt.Sprintf("%.2f%%", successRate),
		ErrorRate:           fmt.Sprintf("%.2f%%", 100-successRate),
		AverageResponseTime: fmt.Sprintf("%.3f", avg),
		P50ResponseTime:     fmt.Sprintf("%.3f", p50),
		P95ResponseTime:     fmt.Sprintf("%.3f", p95),
		TotalTokens:         c.totalTokens,
		TagCounts:           tags,
	}
}

// Counts returns (total, success, error) for invariant checks.
func (c *Collector) Counts() (total, success, errors int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCount, c.successCount, c.errorCount
}

// percentiles computes p50/p95 by the floor-index convention:
// sorted[len/2] and sorted[int(len*0.95)].
func percentiles(latencies []float64) (p50, p95 float64) {
	if len(latencies) == 0 {
		return 0, 0
	}
	sorted := make([]float64, len(latencies))
	copy(sorted, latencies)
	sort.Float64s(sorted)

	p50 = sorted[len(sorted)/2]
	idx := int(float64(len(sorted)) * 0.95)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	p95 = sorted[idx]
	return p50, p95
}
