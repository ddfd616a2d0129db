// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	stderrors "errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mentis-ai/mentis/pkg/errors"
)

func attrString(attrs []attribute.KeyValue, key string) (string, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func TestErrorAttributes(t *testing.T) {
	ae := errors.New(errors.CodeToolFailure, "tool blew up", nil).WithRecoverable(true)
	attrs := ErrorAttributes(ae)

	if got, ok := attrString(attrs, AttrErrorCode); !ok || got != "TOOL_FAILURE" {
		t.Errorf("code attribute = %q (present %v)", got, ok)
	}
	if got, ok := attrString(attrs, AttrErrorRecoverable); !ok || got != "true" {
		t.Errorf("recoverable attribute = %q (present %v)", got, ok)
	}
}

func TestErrorAttributes_PlainError(t *testing.T) {
	attrs := ErrorAttributes(stderrors.New("boom"))
	if got, ok := attrString(attrs, AttrErrorCode); !ok || got != "INTERNAL_ERROR" {
		t.Errorf("code attribute = %q (present %v)", got, ok)
	}
}

func TestErrorAttributes_Nil(t *testing.T) {
	if attrs := ErrorAttributes(nil); attrs != nil {
		t.Errorf("expected nil, got %v", attrs)
	}
}

func TestRequestAttributes(t *testing.T) {
	attrs := RequestAttributes("req-1", "alice")
	if got, ok := attrString(attrs, AttrRequestID); !ok || got != "req-1" {
		t.Errorf("request id attribute = %q (present %v)", got, ok)
	}
	if got, ok := attrString(attrs, AttrRequestUser); !ok || got != "alice" {
		t.Errorf("user attribute = %q (present %v)", got, ok)
	}

	attrs = RequestAttributes("req-2", "")
	if _, ok := attrString(attrs, AttrRequestUser); ok {
		t.Error("expected no user attribute for an empty user id")
	}
}
