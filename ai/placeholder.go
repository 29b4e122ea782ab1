package ai

import (
	"context"
	"fmt"
)

// Placeholder is an offline provider for trying the CLI without an API key.
type Placeholder struct{}

var _ Provider = (*Placeholder)(nil)

func NewPlaceholder() *Placeholder {
	return &Placeholder{}
}

func (p *Placeholder) Name() string {
	return "placeholder"
}

func (p *Placeholder) Chat(ctx context.Context, messages []Message, model string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if len(messages) == 0 {
		return "No messages provided.", nil
	}

	last := messages[len(messages)-1].Content
	return fmt.Sprintf("[placeholder] You asked: %q. "+
		"Configure a real AI provider (openai, anthropic, gemini, groq, ollama) to get actual answers.", truncate(last, 80)), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
