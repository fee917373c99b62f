package llm

import (
	"context"
)

// Provider is the text generator the rest of the service talks to.
type Provider interface {
	// Generate sends the messages to the model and returns its text output.
	// With Request.JSON set the provider asks for a single JSON object;
	// callers still run the output through DecodeJSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation, oldest first.
	Messages []Message

	// JSON requests strict JSON output.
	JSON bool

	// MaxTokens and Temperature fall back to the provider defaults when zero.
	MaxTokens   int
	Temperature float64
}

// Message is a single role-tagged message.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the model output.
type Response struct {
	Text       string
	Usage      Usage
	Model      string
	StopReason string // "end" | "max_tokens"
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Defaults are applied by providers to zero-valued request fields.
type Defaults struct {
	MaxTokens   int
	Temperature float64
}

func (d Defaults) apply(req Request) Request {
	if req.MaxTokens <= 0 {
		req.MaxTokens = d.MaxTokens
	}
	if req.Temperature <= 0 {
		req.Temperature = d.Temperature
	}
	return req
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}
