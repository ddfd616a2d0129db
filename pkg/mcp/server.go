// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcp exposes Mentis tools to MCP-capable hosts over stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mentis-ai/mentis/pkg/core"
	"github.com/mentis-ai/mentis/pkg/tools"
)

// Server wraps the mcp-go server and serves a tool registry.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server.
func NewServer(name, version string) *Server {
	return &Server{
		mcpServer: server.NewMCPServer(name, version),
	}
}

// RegisterTool exposes one tool. The MCP tool takes a single "input"
// string argument that is passed through to the tool.
func (s *Server) RegisterTool(tool core.Tool, description string) {
	def := mcp.NewTool(tool.Name(),
		mcp.WithDescription(description),
		mcp.WithString("input",
			mcp.Description("The message to hand to the tool"),
			mcp.Required(),
		),
	)
	s.mcpServer.AddTool(def, newToolHandler(tool))
}

// RegisterRegistry exposes every tool in the registry.
func (s *Server) RegisterRegistry(registry *tools.Registry) {
	descriptions := map[string]string{
		tools.ToolNameCalculator:    "Evaluates basic arithmetic expressions found in the input",
		tools.ToolNameTextProcessor: "Counts, reverses, or changes the case of the input text",
	}
	for _, tool := range registry.Tools() {
		desc := descriptions[tool.Name()]
		if desc == "" {
			desc = tool.Name()
		}
		s.RegisterTool(tool, desc)
	}
}

// ServeStdio starts the server on stdio. Blocks until the host closes
// the stream.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func newToolHandler(tool core.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		input, _ := args["input"].(string)

		out, err := tool.Call(ctx, input)
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{mcp.TextContent{Type: "text", Text: err.Error()}},
			}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.TextContent{Type: "text", Text: fmt.Sprint(out)}},
		}, nil
	}
}
