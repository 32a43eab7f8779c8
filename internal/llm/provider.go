package llm

import (
	"context"
	"encoding/json"
)

// Provider is the single-request abstraction over an external text
// generation endpoint. It knows nothing about interview sessions.
type Provider interface {
	// Generate sends one prompt and returns the model's output. When
	// the request carries a Schema, the returned Content is JSON that
	// was validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured
	// to use.
	ModelID() string
}

// Request describes one generation call.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Interview prompts are single-turn,
	// so this is normally one user message.
	Messages []Message

	// Schema, when set, requests structured JSON output conforming to
	// it via the provider's native mechanism. When nil, Content is the
	// raw text response.
	Schema *Schema

	// MaxTokens bounds the response length.
	MaxTokens int

	// Temperature controls randomness, 0.0-1.0. Zero means
	// deterministic.
	Temperature float64
}

// Message is one turn in the conversation.
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

// Schema names a JSON Schema the response must conform to.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name
	// for OpenAI). Kebab-case.
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response is the model's output.
type Response struct {
	// Content is the generated output: validated JSON when a Schema
	// was requested, raw text otherwise.
	Content json.RawMessage

	// Usage reports token consumption.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
