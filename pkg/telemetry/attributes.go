// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/mentis-ai/mentis/pkg/errors"
)

// Semantic conventions for Mentis agent telemetry.
const (
	// Request attributes
	AttrRequestID      = "mentis.request.id"
	AttrRequestSuccess = "mentis.request.success"
	AttrRequestTag     = "mentis.request.tag"
	AttrRequestUser    = "mentis.request.user_id"

	// Agent attributes
	AttrAgentID = "mentis.agent.id"

	// Tool attributes
	AttrToolName = "mentis.tool.name"

	// Error attributes
	AttrErrorCode        = "mentis.error.code"
	AttrErrorRecoverable = "mentis.error.recoverable"

	// LLM attributes (standard gen_ai conventions where applicable)
	AttrLLMModel       = "gen_ai.request.model"
	AttrLLMTokensTotal = "gen_ai.usage.total_tokens"
)

// ErrorAttributes returns OTel attributes describing an error, using the
// typed code when the error is an AgentError.
func ErrorAttributes(err error) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	ae := errors.AsAgentError(err)
	return []attribute.KeyValue{
		attribute.String(AttrErrorCode, string(ae.Code)),
		attribute.String(AttrErrorRecoverable, ae.RecoverableString()),
	}
}

// RequestAttributes returns the common attributes for a request span.
func RequestAttributes(requestID, userID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRequestID, requestID),
	}
	if userID != "" {
		attrs = append(attrs, attribute.String(AttrRequestUser, userID))
	}
	return attrs
}
