package components

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"textgen/internal/domain"
)

// Notice is a local system or error line that is not part of the session.
// It is placed after the first After session messages.
type Notice struct {
	After int
	Msg   ChatMessage
}

// ChatViewModel is the scrolling transcript. It follows new output while the
// user is at the bottom and stays put once they scroll up.
type ChatViewModel struct {
	Viewport viewport.Model
	Messages MessageListModel
	ready    bool
	atBottom bool
}

// NewChatView creates a transcript. The viewport is created by the first
// SetSize.
func NewChatView(assistant string, maxMessages int) ChatViewModel {
	return ChatViewModel{
		Messages: MessageListModel{AssistantName: assistant, MaxMessages: maxMessages},
		atBottom: true,
	}
}

// SetSize resizes the viewport and re-renders.
func (m *ChatViewModel) SetSize(w, h int) {
	m.Messages.SetWidth(w)
	if m.ready {
		m.Viewport.Width, m.Viewport.Height = w, h
	} else {
		m.Viewport = viewport.New(w, h)
		m.Viewport.MouseWheelEnabled = true
		m.Viewport.MouseWheelDelta = 3
		m.ready = true
	}
	m.refresh()
}

// Show replaces the transcript with the session messages interleaved with
// notices. Notices must be ordered by After.
func (m *ChatViewModel) Show(msgs []domain.Message, notices []Notice) {
	out := make([]ChatMessage, 0, len(msgs)+len(notices))
	j := 0
	for i, msg := range msgs {
		for ; j < len(notices) && notices[j].After <= i; j++ {
			out = append(out, notices[j].Msg)
		}
		out = append(out, fromDomain(msg))
	}
	for ; j < len(notices); j++ {
		out = append(out, notices[j].Msg)
	}

	m.Messages.Replace(out)
	m.refresh()
}

func fromDomain(msg domain.Message) ChatMessage {
	role := RoleUser
	if msg.Role == domain.RoleAssistant {
		role = RoleAssistant
	}
	return ChatMessage{
		ID:        msg.ID,
		Role:      role,
		Content:   msg.Content,
		Timestamp: msg.CreatedAt,
		Streaming: msg.IsStreaming(),
	}
}

// Update scrolls the viewport and records whether it still sits at the bottom.
func (m ChatViewModel) Update(msg tea.Msg) (ChatViewModel, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	m.atBottom = m.Viewport.AtBottom()
	return m, cmd
}

// View renders the viewport.
func (m ChatViewModel) View() string {
	if !m.ready {
		return "  Initializing..."
	}
	return m.Viewport.View()
}

func (m *ChatViewModel) refresh() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(m.Messages.View())
	if m.atBottom {
		m.Viewport.GotoBottom()
	}
}
