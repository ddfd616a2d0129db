// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mentis-ai/mentis/pkg/errors"
)

// ToolNameRESTFetch is the registry name of the fetch tool.
const ToolNameRESTFetch = "rest_fetch"

// RESTTool exposes a RESTConnector as an agent tool. The input is a
// JSON object (or map) with "source", "endpoint", and optional string
// "params".
type RESTTool struct {
	connector *RESTConnector
}

// NewRESTTool wraps a connector as a tool.
func NewRESTTool(connector *RESTConnector) *RESTTool {
	return &RESTTool{connector: connector}
}

// Name implements core.Tool.
func (t *RESTTool) Name() string { return ToolNameRESTFetch }

// Call fetches from the requested source and returns the result as
// indented JSON text, suitable for inclusion in a prompt.
func (t *RESTTool) Call(ctx context.Context, input any) (any, error) {
	args, err := normalizeArgs(input)
	if err != nil {
		return nil, err
	}

	source, _ := args["source"].(string)
	endpoint, _ := args["endpoint"].(string)
	if source == "" || endpoint == "" {
		return nil, errors.New(errors.CodeInvalidInput,
			"rest_fetch requires source and endpoint", nil)
	}

	var params map[string]string
	if raw, ok := args["params"].(map[string]any); ok {
		params = make(map[string]string, len(raw))
		for k, v := range raw {
			params[k] = fmt.Sprint(v)
		}
	}

	result := t.connector.Fetch(ctx, source, endpoint, params)
	if !result.Success {
		return fmt.Sprintf("Error fetching data: %s", result.Error), nil
	}

	encoded, err := json.MarshalIndent(result.Data, "", "  ")
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "could not encode fetch result", err)
	}
	return string(encoded), nil
}

func normalizeArgs(input any) (map[string]any, error) {
	switch value := input.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return value, nil
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return map[string]any{}, nil
		}
		var decoded map[string]any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
			return nil, errors.New(errors.CodeInvalidInput, "tool args must be a JSON object", err)
		}
		return decoded, nil
	default:
		return nil, errors.New(errors.CodeInvalidInput,
			fmt.Sprintf("unsupported tool args type %T", input), nil)
	}
}
