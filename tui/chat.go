package tui

import (
	"context"
	"strings"

	"github.com/DachengChen/erdchat/agent"
	"github.com/DachengChen/erdchat/ai"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Chat is the Bubble Tea model for the conversation view.
type Chat struct {
	agent    *agent.Agent
	provider string

	input    string
	messages []ai.Message
	loading  bool
	width    int
	height   int
}

var _ tea.Model = (*Chat)(nil)

func NewChat(a *agent.Agent, providerName string) *Chat {
	return &Chat{agent: a, provider: providerName, width: 80, height: 24}
}

func (c *Chat) Init() tea.Cmd { return nil }

func (c *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height

	case tea.KeyMsg:
		return c.handleKey(msg)

	case ResponseMsg:
		c.loading = false
		if msg.Err != nil {
			c.messages = append(c.messages, ai.Message{
				Role:    ai.RoleAssistant,
				Content: "Error: " + msg.Err.Error(),
			})
		} else {
			c.messages = append(c.messages, ai.Message{
				Role:    ai.RoleAssistant,
				Content: msg.Response,
			})
		}
	}
	return c, nil
}

func (c *Chat) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return c, tea.Quit
	case tea.KeyEnter:
		return c, c.send()
	case tea.KeyCtrlL:
		c.messages = nil
		c.agent.Memory().Reset()
	case tea.KeyBackspace:
		if len(c.input) > 0 {
			r := []rune(c.input)
			c.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		c.input += " "
	case tea.KeyRunes:
		c.input += string(msg.Runes)
	}
	return c, nil
}

func (c *Chat) send() tea.Cmd {
	if c.loading {
		return nil
	}
	text := strings.TrimSpace(c.input)
	if text == "" {
		return nil
	}
	if strings.EqualFold(text, "exit") {
		return tea.Quit
	}

	c.messages = append(c.messages, ai.Message{Role: ai.RoleUser, Content: text})
	c.input = ""
	c.loading = true

	a := c.agent
	return func() tea.Msg {
		resp, err := a.Run(context.Background(), text)
		return ResponseMsg{Query: text, Response: resp, Err: err}
	}
}

func (c *Chat) renderChat() []string {
	var lines []string

	for _, msg := range c.messages {
		switch msg.Role {
		case ai.RoleUser:
			lines = append(lines, StyleUser.Render("You: ")+msg.Content, "")
		case ai.RoleAssistant:
			lines = append(lines, StyleSuccess.Render(c.agent.Name()+": "))
			for _, line := range strings.Split(msg.Content, "\n") {
				lines = append(lines, "  "+line)
			}
			lines = append(lines, "")
		}
	}

	if c.loading {
		lines = append(lines, StyleDimmed.Render("  Thinking..."))
	}
	return lines
}

func (c *Chat) View() string {
	header := StyleTitle.Render(c.agent.Name()) + " " + StyleDimmed.Render("("+c.provider+")")
	help := StyleHelpKey.Render("enter") + StyleHelpDesc.Render(" send  ") +
		StyleHelpKey.Render("ctrl+l") + StyleHelpDesc.Render(" clear  ") +
		StyleHelpKey.Render("esc") + StyleHelpDesc.Render(" quit")

	prompt := StylePrompt.Render("Ask> ") + c.input + "█"
	if c.loading {
		prompt = StylePrompt.Render("Ask> ") + StyleDimmed.Render("waiting for response...")
	}

	// Keep the tail of the conversation that fits between header and prompt.
	body := c.renderChat()
	if room := c.height - 4; room > 0 && len(body) > room {
		body = body[len(body)-room:]
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(body, "\n"), prompt, help)
}
