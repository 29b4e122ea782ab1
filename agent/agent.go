// Package agent assembles each model request from the persona prompt,
// prior turns and tool context, and records the exchange.
package agent

import (
	"context"

	"github.com/DachengChen/erdchat/ai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tool is anything the agent can hold. What it can do is discovered
// through capability interfaces such as ContextProvider.
type Tool interface {
	Name() string
}

// ContextProvider is a Tool that can supply background text for a query.
// ok is false when no context is available.
type ContextProvider interface {
	Tool
	Context(ctx context.Context) (text string, ok bool)
}

// Config describes the agent persona.
type Config struct {
	Name        string
	Description string
	// Prompt is the static persona prompt. It is sent as the system
	// message unless SystemPrompt is set.
	Prompt       string
	SystemPrompt string
	// Model is passed to the provider; empty uses its default.
	Model string
}

// Agent runs one question at a time against a Provider.
type Agent struct {
	cfg      Config
	provider ai.Provider
	tool     Tool
	memory   *Memory
	session  string
	log      *zap.Logger
}

// Option customizes an Agent.
type Option func(*Agent)

// WithTool attaches a tool.
func WithTool(t Tool) Option {
	return func(a *Agent) { a.tool = t }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Agent) { a.log = l }
}

// New creates an agent with an empty memory.
func New(cfg Config, provider ai.Provider, opts ...Option) *Agent {
	a := &Agent{
		cfg:      cfg,
		provider: provider,
		memory:   &Memory{},
		session:  uuid.NewString(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With(zap.String("agent", cfg.Name), zap.String("session", a.session))
	return a
}

func (a *Agent) Name() string        { return a.cfg.Name }
func (a *Agent) Description() string { return a.cfg.Description }
func (a *Agent) Session() string     { return a.session }

// Memory exposes the transcript for reading and resetting.
func (a *Agent) Memory() *Memory { return a.memory }

// Run sends query with history and tool context to the model. On success
// the query and reply are appended to memory; on failure memory is
// unchanged.
func (a *Agent) Run(ctx context.Context, query string) (string, error) {
	messages := a.buildMessages(ctx, query)

	a.log.Debug("run", zap.Int("messages", len(messages)), zap.Int("memory", a.memory.Len()))
	resp, err := a.provider.Chat(ctx, messages, a.cfg.Model)
	if err != nil {
		a.log.Error("run failed", zap.Error(err))
		return "", err
	}

	a.memory.append(
		ai.Message{Role: ai.RoleUser, Content: query},
		ai.Message{Role: ai.RoleAssistant, Content: resp},
	)
	return resp, nil
}

func (a *Agent) buildMessages(ctx context.Context, query string) []ai.Message {
	var messages []ai.Message

	system := a.cfg.SystemPrompt
	if system == "" {
		system = a.cfg.Prompt
	}
	if system != "" {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: system})
	}

	if a.memory.Len() > 0 {
		messages = append(messages, ai.Message{
			Role:    ai.RoleAssistant,
			Content: "Previous conversation:\n" + a.memory.transcript(),
		})
	}

	if cp, ok := a.tool.(ContextProvider); ok {
		if text, ok := cp.Context(ctx); ok {
			messages = append(messages, ai.Message{
				Role:    ai.RoleDeveloper,
				Content: "Tool context:\n" + text,
			})
		}
	}

	return append(messages, ai.Message{Role: ai.RoleUser, Content: query})
}
