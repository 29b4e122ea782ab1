package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DachengChen/erdchat/agent"
	"github.com/DachengChen/erdchat/ai"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type echoProvider struct {
	err   error
	calls int
}

func (e *echoProvider) Name() string { return "echo" }

func (e *echoProvider) Chat(ctx context.Context, messages []ai.Message, model string) (string, error) {
	e.calls++
	if e.err != nil {
		return "", e.err
	}
	return "answer to " + messages[len(messages)-1].Content, nil
}

func typeText(c *Chat, s string) {
	c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(c *Chat, k tea.KeyType) tea.Cmd {
	_, cmd := c.Update(tea.KeyMsg{Type: k})
	return cmd
}

func newChat(p ai.Provider) (*Chat, *agent.Agent) {
	a := agent.New(agent.Config{Name: "DatabaseAnalyst"}, p)
	return NewChat(a, "echo"), a
}

func TestSendRunsAgentAndRendersReply(t *testing.T) {
	p := &echoProvider{}
	c, a := newChat(p)

	typeText(c, "how many")
	press(c, tea.KeySpace)
	typeText(c, "films?")
	assert.Equal(t, "how many films?", c.input)

	cmd := press(c, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, c.loading)
	assert.Empty(t, c.input)
	assert.Contains(t, c.View(), "waiting for response")

	// Enter while loading does nothing.
	assert.Nil(t, press(c, tea.KeyEnter))

	msg := cmd()
	resp, ok := msg.(ResponseMsg)
	require.True(t, ok)
	assert.Equal(t, "answer to how many films?", resp.Response)

	c.Update(msg)
	assert.False(t, c.loading)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 2, a.Memory().Len())
	assert.Contains(t, c.View(), "answer to how many films?")
}

func TestBlankInputIsIgnored(t *testing.T) {
	p := &echoProvider{}
	c, _ := newChat(p)

	press(c, tea.KeySpace)
	assert.Nil(t, press(c, tea.KeyEnter))
	assert.Equal(t, 0, p.calls)
}

func TestExitQuitsWithoutCallingAgent(t *testing.T) {
	p := &echoProvider{}
	c, _ := newChat(p)

	typeText(c, "ExIt")
	cmd := press(c, tea.KeyEnter)
	require.NotNil(t, cmd)
	_, quit := cmd().(tea.QuitMsg)
	assert.True(t, quit)
	assert.Equal(t, 0, p.calls)
}

func TestEscQuits(t *testing.T) {
	c, _ := newChat(&echoProvider{})
	cmd := press(c, tea.KeyEsc)
	require.NotNil(t, cmd)
	_, quit := cmd().(tea.QuitMsg)
	assert.True(t, quit)
}

func TestErrorReplyShown(t *testing.T) {
	p := &echoProvider{err: errors.New("quota exceeded")}
	c, a := newChat(p)

	typeText(c, "q")
	cmd := press(c, tea.KeyEnter)
	c.Update(cmd())

	assert.Contains(t, c.View(), "Error: quota exceeded")
	assert.Equal(t, 0, a.Memory().Len())
}

func TestClearResetsViewAndMemory(t *testing.T) {
	c, a := newChat(&echoProvider{})
	typeText(c, "q")
	c.Update(press(c, tea.KeyEnter)())
	require.Equal(t, 2, a.Memory().Len())

	press(c, tea.KeyCtrlL)
	assert.Empty(t, c.messages)
	assert.Equal(t, 0, a.Memory().Len())
}

func TestBackspaceAndResize(t *testing.T) {
	c, _ := newChat(&echoProvider{})
	typeText(c, "héllo")
	press(c, tea.KeyBackspace)
	assert.Equal(t, "héll", c.input)
	for range 4 {
		press(c, tea.KeyBackspace)
	}
	assert.Empty(t, c.input)

	c.Update(tea.WindowSizeMsg{Width: 100, Height: 6})
	for i := 0; i < 5; i++ {
		typeText(c, "q")
		c.Update(press(c, tea.KeyEnter)())
	}
	assert.Equal(t, 1, strings.Count(c.View(), "answer to q"), "only the tail fits")
	assert.Nil(t, c.Init())
}
