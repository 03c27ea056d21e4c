// Package llm defines the language-model capability boundary for agentgraph.
//
// The engine only depends on the Client interface. A production deployment
// supplies a real backend (ClaudeCLI or its own implementation); tests use
// MockClient.
package llm

import "context"

// Client is a language-model backend.
// Implementations must be safe for concurrent use.
type Client interface {
	// Complete sends a completion request and returns the full response.
	// The returned response may carry tool calls when the request offered
	// tools and the model chose to use them.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
