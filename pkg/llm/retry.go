// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	stderrors "errors"
	"math"
	"math/rand"
	"time"

	"github.com/mentis-ai/mentis/pkg/errors"
)

// RetryConfig controls retry behavior with exponential backoff for a
// RetryProvider.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialDelay is the backoff delay before the second attempt.
	InitialDelay time.Duration

	// MaxDelay caps the exponential backoff delay.
	MaxDelay time.Duration

	// Multiplier for exponential backoff (default 2.0).
	Multiplier float64

	// Jitter between 0 and 1; 0.1 means ±10% around the computed delay.
	Jitter float64
}

// DefaultRetryConfig returns the retry configuration used when none is
// supplied: three attempts, 100ms initial delay, 5s cap.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// RetryProvider wraps a Provider and retries failed completions with
// exponential backoff. Errors marked non-recoverable are returned
// immediately; everything else is retried until the attempt budget is
// spent.
type RetryProvider struct {
	next Provider
	cfg  RetryConfig
}

// NewRetryProvider wraps next with retry behavior.
func NewRetryProvider(next Provider, cfg RetryConfig) *RetryProvider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	return &RetryProvider{next: next, cfg: cfg}
}

// Chat implements Provider. The last attempt's error is returned when
// every attempt fails.
func (p *RetryProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var lastErr error
	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.New(errors.CodeCompletion, "canceled while waiting to retry", ctx.Err()).
					WithContext("attempt", attempt).
					WithContext("max_attempts", p.cfg.MaxAttempts)
			case <-time.After(p.backoff(attempt)):
			}
		}

		resp, err := p.next.Chat(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var ae *errors.AgentError
		if stderrors.As(err, &ae) && !ae.Recoverable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (p *RetryProvider) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(p.cfg.InitialDelay) * math.Pow(p.cfg.Multiplier, float64(attempt-1)))
	if p.cfg.MaxDelay > 0 && delay > p.cfg.MaxDelay {
		delay = p.cfg.MaxDelay
	}
	if p.cfg.Jitter > 0 {
		spread := float64(delay) * p.cfg.Jitter
		delay += time.Duration(spread * 2 * (rand.Float64() - 0.5))
		if delay < 0 {
			delay = 0
		}
	}
	return delay
}
