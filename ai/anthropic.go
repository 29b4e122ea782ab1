package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const anthropicBaseURL = "https://api.anthropic.com"

// Anthropic implements the Provider interface for the Anthropic Messages API.
type Anthropic struct {
	apiKey  string
	model   string
	baseURL string
}

var _ Provider = (*Anthropic)(nil)

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(apiKey, model string) *Anthropic {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &Anthropic{apiKey: apiKey, model: model, baseURL: anthropicBaseURL}
}

func (a *Anthropic) Name() string {
	return fmt.Sprintf("Anthropic (%s)", a.model)
}

func (a *Anthropic) Chat(ctx context.Context, messages []Message, model string) (string, error) {
	if model == "" {
		model = a.model
	}

	type apiMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	// Anthropic takes the system prompt as a top-level field and only
	// knows user/assistant turns; developer context goes in as user.
	var system []string
	apiMsgs := make([]apiMsg, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			apiMsgs = append(apiMsgs, apiMsg{Role: RoleAssistant, Content: m.Content})
		default:
			apiMsgs = append(apiMsgs, apiMsg{Role: RoleUser, Content: m.Content})
		}
	}

	if len(apiMsgs) == 0 {
		return "", fmt.Errorf("anthropic requires at least one user message")
	}

	body := map[string]interface{}{
		"model":      model,
		"max_tokens": 4096,
		"messages":   apiMsgs,
	}
	if len(system) > 0 {
		body["system"] = strings.Join(system, "\n\n")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("anthropic parse error: %w", err)
	}

	var text strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no text content")
	}

	return strings.TrimSpace(text.String()), nil
}
