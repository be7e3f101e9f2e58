// Package components provides reusable Bubble Tea sub-models for the TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"textgen/internal/adapter/tui/theme"
)

// HealthState is the last known availability of the generation service.
type HealthState int

const (
	HealthUnknown HealthState = iota
	HealthOnline
	HealthOffline
)

// String returns a human-readable label for the state.
func (s HealthState) String() string {
	switch s {
	case HealthOnline:
		return "online"
	case HealthOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// HeaderModel is the single-line title bar with a service status dot.
type HeaderModel struct {
	Title  string
	URL    string
	Health HealthState
	Detail string // e.g. vocabulary size, shown next to the dot
	width  int
}

// NewHeader creates a header for the given title and service URL.
func NewHeader(title, url string) HeaderModel {
	return HeaderModel{Title: title, URL: url}
}

// SetWidth updates the available width.
func (m *HeaderModel) SetWidth(w int) {
	m.width = w
}

// View renders the header as a single line.
func (m HeaderModel) View() string {
	left := theme.HeaderTitle.Render(m.Title)

	var dot string
	switch m.Health {
	case HealthOnline:
		dot = theme.HealthOnline.Render(theme.SymbolInfo)
	case HealthOffline:
		dot = theme.HealthOffline.Render(theme.SymbolInfo)
	default:
		dot = theme.HealthUnknown.Render(theme.SymbolInfo)
	}
	right := dot + " " + m.Health.String()
	if m.Detail != "" {
		right += " " + theme.TextMuted.Render(m.Detail)
	}
	if m.URL != "" && m.width >= theme.MinHeaderDetailWidth {
		right = theme.TextMuted.Render(m.URL) + "  " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
