package triage

import "context"

// Provider is the interface for any LLM backend.
type Provider interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Request is a single-shot completion request: one system prompt, one user
// prompt, no conversation state.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Response is the provider's reply with token accounting.
type Response struct {
	Text  string
	Usage Usage
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
