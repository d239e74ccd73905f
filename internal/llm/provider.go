// Package llm is the completion gateway: a provider-neutral client for the
// text-generation service behind both the chat assistant and the relevance
// judgments. Callers pick a purpose-scoped failure policy themselves; the
// gateway only reports what happened.
package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for gateway interaction.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its response. When the
	// request carries a Schema, the provider uses its native structured
	// output mechanism and the response Content is the validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Never persisted to conversation logs.
	System string

	// Messages is the conversation history, oldest first. Relevance
	// judgments send a single user message; chat replies send the whole
	// session so far.
	Messages []Message

	// Schema, when set, constrains the response to JSON conforming to it.
	// When nil the response Content is the raw text.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
	Temperature float64
}

// Message represents a single message in the conversation.
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

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema (tool name for Anthropic, schema name
	// for OpenAI). Kebab-case.
	Name string

	// Description is sent to the LLM to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output: validated JSON when the request had
	// a Schema, raw text bytes otherwise.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
