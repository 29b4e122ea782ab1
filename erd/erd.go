// Package erd turns a schema snapshot into a Mermaid entity-relationship
// diagram by asking a language model, and caches the result on disk.
//
// The diagram file is the only persisted state. It is written once and
// read on every later start; nothing here detects schema drift.
package erd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/DachengChen/erdchat/ai"
	"github.com/DachengChen/erdchat/applog"
	"github.com/DachengChen/erdchat/db"
	"go.uber.org/zap"
)

// ErrNotCached is returned by Load when there is no usable diagram file.
var ErrNotCached = errors.New("erd: diagram not cached")

// Generator builds and persists diagrams.
type Generator struct {
	provider ai.Provider
	model    string
	path     string
	log      *zap.Logger
}

// NewGenerator returns a generator writing to path. An empty model uses
// the provider default.
func NewGenerator(provider ai.Provider, model, path string, log *zap.Logger) *Generator {
	log = applog.OrNop(log)
	return &Generator{provider: provider, model: model, path: path, log: log}
}

// Path is the diagram file location.
func (g *Generator) Path() string {
	return g.path
}

// Prompt builds the fixed two-message request for snapshot s.
func (g *Generator) Prompt(s db.Snapshot) []ai.Message {
	return []ai.Message{
		{Role: ai.RoleSystem, Content: ai.SystemPromptERD},
		{Role: ai.RoleUser, Content: "Generate an ERD for the following schema:\n" + db.FormatSnapshot(s)},
	}
}

// Generate asks the model for a diagram and writes the reply verbatim to
// the target file, replacing whatever was there.
func (g *Generator) Generate(ctx context.Context, s db.Snapshot) (string, error) {
	text, err := g.provider.Chat(ctx, g.Prompt(s), g.model)
	if err != nil {
		return "", fmt.Errorf("generate erd: %w", err)
	}
	if err := os.WriteFile(g.path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("write erd %s: %w", g.path, err)
	}
	g.log.Info("erd written", zap.String("path", g.path), zap.Int("tables", len(s)), zap.Int("bytes", len(text)))
	return text, nil
}

// Load reads a cached diagram. A missing or empty file is ErrNotCached.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotCached
		}
		return "", fmt.Errorf("read erd %s: %w", path, err)
	}
	if len(data) == 0 {
		return "", ErrNotCached
	}
	return string(data), nil
}
