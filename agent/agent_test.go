package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DachengChen/erdchat/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	replies []string
	err     error
	seen    [][]ai.Message
	models  []string
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Chat(ctx context.Context, messages []ai.Message, model string) (string, error) {
	s.seen = append(s.seen, messages)
	s.models = append(s.models, model)
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return "ok", nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

type staticTool struct {
	text  string
	ok    bool
	calls int
}

func (s *staticTool) Name() string { return "static" }

func (s *staticTool) Context(ctx context.Context) (string, bool) {
	s.calls++
	return s.text, s.ok
}

// nameOnlyTool lacks the ContextProvider capability.
type nameOnlyTool struct{}

func (nameOnlyTool) Name() string { return "bare" }

func roles(msgs []ai.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

func TestRunEndToEndAgainstChatEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",`+
			`"choices":[{"index":0,"message":{"role":"assistant","content":"42 rows"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	a := New(Config{Name: "DatabaseAnalyst", Prompt: "You are an expert database analyst."},
		ai.NewOpenAI("sk-test", "gpt-4o", server.URL+"/v1/"))

	resp, err := a.Run(context.Background(), "how many rows?")
	require.NoError(t, err)
	assert.Equal(t, "42 rows", resp)
	assert.Equal(t, []ai.Message{
		{Role: ai.RoleUser, Content: "how many rows?"},
		{Role: ai.RoleAssistant, Content: "42 rows"},
	}, a.Memory().Messages())
}

func TestMemoryGrowsByTwoPerRunInOrder(t *testing.T) {
	p := &scriptedProvider{replies: []string{"r1", "r2", "r3", "r4"}}
	a := New(Config{Name: "a"}, p)

	for i := 1; i <= 4; i++ {
		_, err := a.Run(context.Background(), fmt.Sprintf("q%d", i))
		require.NoError(t, err)
		assert.Equal(t, 2*i, a.Memory().Len())
	}

	msgs := a.Memory().Messages()
	for i := 0; i < 4; i++ {
		assert.Equal(t, ai.Message{Role: ai.RoleUser, Content: fmt.Sprintf("q%d", i+1)}, msgs[2*i])
		assert.Equal(t, ai.Message{Role: ai.RoleAssistant, Content: fmt.Sprintf("r%d", i+1)}, msgs[2*i+1])
	}
}

func TestRunMessageLayout(t *testing.T) {
	p := &scriptedProvider{replies: []string{"first answer", "second answer"}}
	tl := &staticTool{text: "erDiagram\n  FILM", ok: true}
	a := New(Config{Name: "a", Prompt: "persona", Model: "gpt-4o-mini"}, p, WithTool(tl))

	_, err := a.Run(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, []string{"system", "developer", "user"}, roles(p.seen[0]))
	assert.Equal(t, "persona", p.seen[0][0].Content)
	assert.Equal(t, "Tool context:\nerDiagram\n  FILM", p.seen[0][1].Content)
	assert.Equal(t, "first", p.seen[0][2].Content)

	_, err = a.Run(context.Background(), "second")
	require.NoError(t, err)
	second := p.seen[1]
	assert.Equal(t, []string{"system", "assistant", "developer", "user"}, roles(second))
	assert.True(t, strings.HasPrefix(second[1].Content, "Previous conversation:\n"))
	assert.Contains(t, second[1].Content, "user: first\n")
	assert.Contains(t, second[1].Content, "assistant: first answer\n")

	assert.Equal(t, 2, tl.calls, "context fetched on every run")
	assert.Equal(t, []string{"gpt-4o-mini", "gpt-4o-mini"}, p.models)
	for _, m := range a.Memory().Messages() {
		assert.NotContains(t, m.Content, "erDiagram", "tool context never enters memory")
	}
}

func TestSystemPromptWinsOverPrompt(t *testing.T) {
	p := &scriptedProvider{}
	a := New(Config{Prompt: "persona", SystemPrompt: "strict system"}, p)

	_, err := a.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "strict system", p.seen[0][0].Content)
}

func TestNoPromptNoSystemMessage(t *testing.T) {
	p := &scriptedProvider{}
	a := New(Config{}, p)

	_, err := a.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, roles(p.seen[0]))
}

func TestToolWithoutCapabilityAddsNothing(t *testing.T) {
	p := &scriptedProvider{}
	a := New(Config{}, p, WithTool(nameOnlyTool{}))

	_, err := a.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, roles(p.seen[0]))
}

func TestToolWithNoContextAddsNothing(t *testing.T) {
	p := &scriptedProvider{}
	tl := &staticTool{ok: false}
	a := New(Config{}, p, WithTool(tl))

	_, err := a.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, roles(p.seen[0]))
	assert.Equal(t, 1, tl.calls)
}

func TestRunErrorLeavesMemoryUnchanged(t *testing.T) {
	p := &scriptedProvider{err: errors.New("503 service unavailable")}
	a := New(Config{}, p)

	_, err := a.Run(context.Background(), "q")
	require.ErrorIs(t, err, p.err)
	assert.Equal(t, 0, a.Memory().Len())
}

func TestMemoryIsolationAndReset(t *testing.T) {
	a1 := New(Config{Name: "one"}, &scriptedProvider{})
	a2 := New(Config{Name: "two"}, &scriptedProvider{})

	_, err := a1.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 2, a1.Memory().Len())
	assert.Equal(t, 0, a2.Memory().Len())
	assert.NotEqual(t, a1.Session(), a2.Session())

	snapshot := a1.Memory().Messages()
	snapshot[0].Content = "tampered"
	assert.Equal(t, "q", a1.Memory().Messages()[0].Content)

	a1.Memory().Reset()
	assert.Equal(t, 0, a1.Memory().Len())
}

func TestAccessors(t *testing.T) {
	a := New(Config{Name: "DatabaseAnalyst", Description: "Helps analyze database schema and data"}, &scriptedProvider{})
	assert.Equal(t, "DatabaseAnalyst", a.Name())
	assert.Equal(t, "Helps analyze database schema and data", a.Description())
}
