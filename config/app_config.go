package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultERDFile is where the generated diagram is cached.
const DefaultERDFile = "erd.md"

// AppConfig is the top-level config file structure (~/.erdchat/config.yaml).
type AppConfig struct {
	DB      Config      `yaml:"db"`
	AI      AIConfig    `yaml:"ai"`
	Agent   AgentConfig `yaml:"agent"`
	ERDFile string      `yaml:"erd_file"`
	LogDir  string      `yaml:"log_dir,omitempty"`
}

// DefaultAppConfig returns a config populated with defaults only.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		DB:      DefaultConfig(),
		AI:      DefaultAIConfig(),
		Agent:   DefaultAgentConfig(),
		ERDFile: DefaultERDFile,
		LogDir:  defaultLogDir(),
	}
}

// DefaultPath returns ~/.erdchat/config.yaml, or "" if there is no home directory.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".erdchat", "config.yaml")
}

func defaultLogDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".erdchat", "logs")
}

// Load reads the config file at path; a missing file yields defaults.
// A .env file in the working directory is loaded first, and environment
// variables override whatever the file says.
func Load(path string) (*AppConfig, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := DefaultAppConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets environment variables override file config.
func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv("PGHOST"); v != "" {
		cfg.DB.Host = v
	}
	if v := os.Getenv("PGPORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PGPORT: %w", err)
		}
		cfg.DB.Port = port
	}
	if v := os.Getenv("PGUSER"); v != "" {
		cfg.DB.User = v
	}
	if v := os.Getenv("PGPASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("PGDATABASE"); v != "" {
		cfg.DB.Database = v
	}
	if v := os.Getenv("PGSSLMODE"); v != "" {
		cfg.DB.SSLMode = v
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAI.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.AI.Anthropic.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.Gemini.APIKey = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		cfg.AI.Groq.APIKey = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.AI.Ollama.Host = v
	}
	if v := os.Getenv("ERDCHAT_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := os.Getenv("ERDCHAT_MODEL"); v != "" {
		cfg.Agent.Model = v
	}
	return nil
}

// Save writes the config to path, creating its directory.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
