package agent

import (
	"strings"
	"sync"

	"github.com/DachengChen/erdchat/ai"
)

// Memory is the append-only transcript of user/assistant turns owned by
// one Agent. It grows without bound.
type Memory struct {
	mu   sync.RWMutex
	msgs []ai.Message
}

// Len returns the number of stored messages.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.msgs)
}

// Messages returns a copy of the transcript in call order.
func (m *Memory) Messages() []ai.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ai.Message, len(m.msgs))
	copy(out, m.msgs)
	return out
}

// Reset forgets every turn.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = nil
}

func (m *Memory) append(msgs ...ai.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msgs...)
}

// transcript inlines the history as "role: content" lines.
func (m *Memory) transcript() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sb strings.Builder
	for _, msg := range m.msgs {
		sb.WriteString(msg.Role)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
