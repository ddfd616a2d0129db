// Package core defines the small shared interfaces of the Mentis runtime.
package core

import "context"

// Tool is a concrete local capability the agent can invoke.
type Tool interface {
	Name() string
	Call(ctx context.Context, input any) (any, error)
}
