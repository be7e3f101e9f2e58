package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"textgen/internal/adapter/tui/theme"
	"textgen/internal/domain"
)

// KeyHint is one key binding shown on the left of the status bar.
type KeyHint struct {
	Key  string
	Desc string
}

var (
	idleHints = []KeyHint{
		{Key: "Enter", Desc: "Generate"},
		{Key: "Alt+Enter", Desc: "Newline"},
		{Key: "Esc", Desc: "Scroll"},
		{Key: "?", Desc: "/help"},
		{Key: "Ctrl+C", Desc: "Quit"},
	}
	busyHints = []KeyHint{
		{Key: "Ctrl+C", Desc: "Stop"},
		{Key: "j/k", Desc: "Scroll"},
	}
	scrollHints = []KeyHint{
		{Key: "j/k", Desc: "Scroll"},
		{Key: "g/G", Desc: "Top/bottom"},
		{Key: "i", Desc: "Input"},
	}
)

// PhaseActivity is the short label for what the session is doing, or "" when
// it is idle.
func PhaseActivity(p domain.Phase) string {
	switch p {
	case domain.PhaseAwaitingResponse:
		return "Generating..."
	case domain.PhaseStreaming:
		return "Writing..."
	default:
		return ""
	}
}

// StatusBarModel is the bottom line: key hints for the current phase on the
// left, the generation settings and activity on the right.
type StatusBarModel struct {
	Phase     domain.Phase
	Params    domain.GenerationParams
	Speed     string // reveal speed label
	Scrolling bool   // input blurred, vim keys active
	width     int
}

// NewStatusBar creates a status bar for an idle session.
func NewStatusBar() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth updates the available width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// Hints returns the key hints that apply right now.
func (m StatusBarModel) Hints() []KeyHint {
	switch {
	case m.Phase.Busy():
		return busyHints
	case m.Scrolling:
		return scrollHints
	default:
		return idleHints
	}
}

func (m StatusBarModel) settings() string {
	parts := []string{
		fmt.Sprintf("len %d", m.Params.MaxLength),
		fmt.Sprintf("temp %.1f", m.Params.Temperature),
	}
	if m.Speed != "" {
		parts = append(parts, m.Speed)
	}
	return strings.Join(parts, " "+theme.SymbolBullet+" ")
}

// View renders the status bar as a single line.
func (m StatusBarModel) View() string {
	hints := m.Hints()
	keys := make([]string, len(hints))
	for i, h := range hints {
		keys[i] = theme.StatusKey.Render(h.Key) + ": " + h.Desc
	}
	left := strings.Join(keys, "  "+theme.Dim.Render("|")+"  ")

	right := theme.TextMuted.Render(m.settings())
	if act := PhaseActivity(m.Phase); act != "" {
		right += "  " + theme.StatusPhase.Render(theme.SymbolSpinner+" "+act)
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
