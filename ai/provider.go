// Package ai defines the chat client interface for hosted language
// models and its backends.
//
// Design decisions:
//   - Provider is an interface so backends (OpenAI, Anthropic, Gemini,
//     OpenAI-compatible hosts) can be swapped without touching the agent.
//   - One synchronous call per Chat: no streaming, no retry, no backoff.
//     Transport and API errors are returned wrapped, not translated.
//   - All methods accept context for cancellation.
package ai

import (
	"context"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleDeveloper = "developer"
)

// Message represents a chat message.
type Message struct {
	Role    string
	Content string
}

// Provider is the interface all AI backends must implement.
type Provider interface {
	// Chat sends a conversation and returns the trimmed text of the
	// first choice. An empty model selects the provider's default.
	Chat(ctx context.Context, messages []Message, model string) (string, error)

	// Name returns the provider name for display.
	Name() string
}
