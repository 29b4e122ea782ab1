package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/DachengChen/erdchat/config"
)

// SupportedProviders lists available provider names for display.
var SupportedProviders = []string{"openai", "anthropic", "gemini", "groq", "ollama", "placeholder"}

const groqBaseURL = "https://api.groq.com/openai/v1/"

// NewProvider creates an AI provider from the application config.
func NewProvider(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key not set. Set OPENAI_API_KEY env var or add it to ~/.erdchat/config.yaml")
		}
		return NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL), nil

	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("Anthropic API key not set. Set ANTHROPIC_API_KEY env var or add it to ~/.erdchat/config.yaml")
		}
		return NewAnthropic(cfg.Anthropic.APIKey, cfg.Anthropic.Model), nil

	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("Gemini API key not set. Set GEMINI_API_KEY env var or add it to ~/.erdchat/config.yaml")
		}
		g, err := NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, "")
		if err != nil {
			return nil, err
		}
		return g, nil

	case "groq":
		if cfg.Groq.APIKey == "" {
			return nil, fmt.Errorf("Groq API key not set. Set GROQ_API_KEY env var or add it to ~/.erdchat/config.yaml")
		}
		return newOpenAICompatible("Groq", cfg.Groq.APIKey, cfg.Groq.Model, groqBaseURL), nil

	case "ollama":
		// Ollama ignores the key but the client insists on one.
		host := strings.TrimSuffix(cfg.Ollama.Host, "/")
		if host == "" {
			host = "http://localhost:11434"
		}
		model := cfg.Ollama.Model
		if model == "" {
			model = "llama3.2"
		}
		return newOpenAICompatible("Ollama", "ollama", model, host+"/v1/"), nil

	case "placeholder":
		return NewPlaceholder(), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q. Supported: %s", cfg.Provider, strings.Join(SupportedProviders, ", "))
	}
}
