package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"textgen/internal/adapter/tui/theme"
)

// MessageRole identifies who a transcript line belongs to.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
	RoleError     MessageRole = "error"
)

// ChatMessage is one rendered entry of the transcript.
type ChatMessage struct {
	ID        string // session message ID; empty for local notices
	Role      MessageRole
	Content   string
	Rendered  string // cached body; empty until first render
	Timestamp time.Time
	Markdown  bool
	Streaming bool // still being revealed, drawn with a cursor
}

// MessageListModel renders the transcript. Only the newest MaxMessages entries
// are kept when MaxMessages is positive.
type MessageListModel struct {
	Messages      []ChatMessage
	MaxMessages   int
	AssistantName string // empty uses theme.SymbolBot
	trimmed       int
	width         int
	md            *glamour.TermRenderer
}

// SetWidth updates the wrap width. A change drops every cached render.
func (m *MessageListModel) SetWidth(w int) {
	if w == m.width {
		return
	}
	m.width = w
	m.md = nil
	for i := range m.Messages {
		m.Messages[i].Rendered = ""
	}
}

// SetMaxMessages sets how many entries are kept. 0 keeps all of them.
func (m *MessageListModel) SetMaxMessages(n int) {
	m.MaxMessages = n
}

// TrimmedIndicator describes the entries dropped by the last Replace.
func (m *MessageListModel) TrimmedIndicator() string {
	if m.trimmed == 0 {
		return ""
	}
	return fmt.Sprintf("(%d older messages trimmed)", m.trimmed)
}

// Replace installs msgs. An entry keeps its cached render when the previous
// list had the same ID with the same content and streaming state, so only
// the message being revealed is re-wrapped on each tick.
func (m *MessageListModel) Replace(msgs []ChatMessage) {
	prev := make(map[string]ChatMessage, len(m.Messages))
	for _, old := range m.Messages {
		if old.ID != "" && old.Rendered != "" {
			prev[old.ID] = old
		}
	}

	m.trimmed = 0
	if m.MaxMessages > 0 && len(msgs) > m.MaxMessages {
		m.trimmed = len(msgs) - m.MaxMessages
		msgs = msgs[m.trimmed:]
	}
	m.Messages = make([]ChatMessage, len(msgs))
	for i, msg := range msgs {
		if old, ok := prev[msg.ID]; ok && old.Content == msg.Content && old.Streaming == msg.Streaming {
			msg.Rendered = old.Rendered
		}
		m.Messages[i] = msg
	}
}

// View renders the transcript.
func (m *MessageListModel) View() string {
	if len(m.Messages) == 0 {
		return theme.TextMuted.Render("  No messages yet. Type a prefix and press Enter.")
	}
	width := ContentWidth(m.width)

	var sb strings.Builder
	if note := m.TrimmedIndicator(); note != "" {
		sb.WriteString(theme.TextMuted.Render("  "+note) + "\n\n")
	}
	for i := range m.Messages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(m.render(&m.Messages[i], width))
	}
	return sb.String()
}

// render draws one entry as "label time  first line" with the rest of the
// body indented below. Markdown always starts on its own line.
func (m *MessageListModel) render(msg *ChatMessage, width int) string {
	head := m.label(msg.Role) + " " + theme.Timestamp.Render(RelativeTime(msg.Timestamp))
	inline := width - lipgloss.Width(head) - 2

	if msg.Markdown {
		if msg.Rendered == "" {
			msg.Rendered = m.markdown(msg.Content, width)
		}
		return head + "\n" + strings.TrimRight(msg.Rendered, "\n")
	}

	var body string
	if msg.Role == RoleError {
		body = theme.TextError.Render(wrapText(msg.Content, width-2))
	} else {
		if msg.Rendered == "" {
			wrapAt := inline
			if wrapAt < 20 {
				wrapAt = width - 2
			}
			msg.Rendered = wrapText(msg.Content, wrapAt)
		}
		body = msg.Rendered
	}
	if msg.Streaming {
		body += theme.TextAccent.Render(theme.SymbolCursor)
	}

	switch {
	case body == "":
		return head
	case inline < 20:
		return head + "\n  " + body
	}
	first, rest, more := strings.Cut(body, "\n")
	out := head + "  " + strings.TrimSpace(first)
	if more {
		out += "\n" + rest
	}
	return out
}

func (m *MessageListModel) label(role MessageRole) string {
	switch role {
	case RoleUser:
		return theme.UserLabel.Render(theme.SymbolUser)
	case RoleAssistant:
		if m.AssistantName != "" {
			return theme.BotLabel.Render(m.AssistantName)
		}
		return theme.BotLabel.Render(theme.SymbolBot)
	case RoleSystem:
		return theme.SystemLabel.Render("System")
	case RoleError:
		return theme.ErrorLabel.Render(theme.SymbolError + " Error")
	default:
		return theme.TextMuted.Render(string(role))
	}
}

func (m *MessageListModel) markdown(content string, width int) string {
	if m.md == nil {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
		if err != nil {
			return "  " + content
		}
		m.md = r
	}
	out, err := m.md.Render(content)
	if err != nil {
		return "  " + content
	}
	return out
}

// RelativeTime formats t as "just now", "5m ago", "3h ago" or a date.
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	switch d := time.Since(t); {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("Jan 2 15:04")
	}
}

// wrapText breaks s at spaces into lines of at most width runes, indenting
// continuation lines by two spaces. Urdu text is multibyte, so widths count
// runes.
func wrapText(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	var lines []string
	for len(runes) > width {
		cut := width
		for i := width - 1; i > 0; i-- {
			if runes[i] == ' ' {
				cut = i
				break
			}
		}
		lines = append(lines, string(runes[:cut]))
		runes = []rune(strings.TrimLeft(string(runes[cut:]), " "))
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return strings.Join(lines, "\n  ")
}

// ContentWidth is the transcript width for a terminal termWidth columns wide.
func ContentWidth(termWidth int) int {
	return min(max(termWidth-4, 40), theme.MaxContentWidth)
}

// Divider renders a horizontal rule width columns wide.
func Divider(width int) string {
	return lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Repeat("─", width))
}
