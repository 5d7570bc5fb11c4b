// Package llm defines the completion-service boundary. The triage engine
// treats the provider as a black box that turns a prompt into text; the
// concrete backend lives in subpackages (claude).
package llm

import "context"

// Message is a single conversation message sent to the provider.
type Message struct {
	Role    string
	Content string
}

// Request is the input to a completion call.
type Request struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Provider is the interface for any completion backend.
type Provider interface {
	Complete(ctx context.Context, req *Request) (string, error)
}
