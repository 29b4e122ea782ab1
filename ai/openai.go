package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI implements the Provider interface for the Chat Completions API.
// Pointed at a different base URL it also serves OpenAI-compatible hosts
// such as Ollama and Groq.
type OpenAI struct {
	client openai.Client
	label  string
	model  string
}

var _ Provider = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI provider. baseURL may be empty.
func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	return newOpenAICompatible("OpenAI", apiKey, model, baseURL)
}

func newOpenAICompatible(label, apiKey, model, baseURL string) *OpenAI {
	if model == "" {
		model = "gpt-4o"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{
		client: openai.NewClient(opts...),
		label:  label,
		model:  model,
	}
}

func (o *OpenAI) Name() string {
	return fmt.Sprintf("%s (%s)", o.label, o.model)
}

func (o *OpenAI) Chat(ctx context.Context, messages []Message, model string) (string, error) {
	if model == "" {
		model = o.model
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case RoleDeveloper:
			params.Messages = append(params.Messages, openai.DeveloperMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", strings.ToLower(o.label), err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", strings.ToLower(o.label))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
