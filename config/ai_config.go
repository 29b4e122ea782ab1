// Package config holds AI provider and agent configuration.
//
// Settings live in ~/.erdchat/config.yaml next to the database
// connection. API keys can also be set via environment variables
// (OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY, GROQ_API_KEY),
// optionally loaded from a .env file.
package config

// AIConfig holds the AI provider selection and credentials.
type AIConfig struct {
	Provider  string          `yaml:"provider"` // "openai", "anthropic", "gemini", "groq", "ollama", "placeholder"
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Groq      GroqConfig      `yaml:"groq"`
}

// OpenAIConfig holds OpenAI-specific settings.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// AnthropicConfig holds Anthropic-specific settings.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model"`
}

// GeminiConfig holds Google Gemini-specific settings.
type GeminiConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// GroqConfig holds Groq-specific settings.
type GroqConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model"`
}

// AgentConfig describes the chat agent persona.
type AgentConfig struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Prompt       string `yaml:"prompt"`
	SystemPrompt string `yaml:"system_prompt,omitempty"`
	// Model overrides the provider's default model for chat turns.
	Model string `yaml:"model,omitempty"`
}

// DefaultAIConfig returns sensible defaults.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Provider: "openai",
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "llama3.2",
		},
		Groq: GroqConfig{
			Model: "llama-3.1-8b-instant",
		},
	}
}

// DefaultAgentConfig returns the database analyst persona.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Name:        "DatabaseAnalyst",
		Description: "Helps analyze database schema and data",
		Prompt: "You are an expert database analyst. Answer questions about the connected " +
			"PostgreSQL database using the entity-relationship diagram and context provided. " +
			"Always be helpful and polite and answer from the context only; " +
			"do not fill in irrelevant information.",
	}
}
