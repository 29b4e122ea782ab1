// Package tui is the full-screen chat front end over the agent.
//
// Questions are sent asynchronously; the UI stays responsive while the
// model answers. The plain line REPL in cmd is the default; this view is
// opt-in with --tui.
package tui

import (
	"github.com/DachengChen/erdchat/agent"
	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the chat view until the user quits.
func Start(a *agent.Agent, providerName string) error {
	p := tea.NewProgram(NewChat(a, providerName), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
