package components

import (
	"strings"

	"textgen/internal/adapter/tui/theme"
)

// popupRows is the most commands the popup lists at once.
const popupRows = 7

// CommandDef describes a slash command for the popup and /help.
type CommandDef struct {
	Name        string // "/length"
	Args        string // "<50-500>"
	Description string
}

// Usage is the command name followed by its argument synopsis.
func (c CommandDef) Usage() string {
	if c.Args == "" {
		return c.Name
	}
	return c.Name + " " + c.Args
}

// ParseSlashCommand splits "/cmd a b" into its lowercased name and arguments.
func ParseSlashCommand(input string) (cmd string, args []string, ok bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// AutocompleteModel is the slash-command popup shown above the input while
// the user types a command name.
type AutocompleteModel struct {
	commands []CommandDef
	matches  []CommandDef
	cursor   int
	width    int
}

// NewAutocomplete creates a popup over commands.
func NewAutocomplete(commands []CommandDef) AutocompleteModel {
	return AutocompleteModel{commands: commands}
}

// SetWidth updates the popup width.
func (m *AutocompleteModel) SetWidth(w int) {
	m.width = w
}

// Visible reports whether the popup has anything to show.
func (m AutocompleteModel) Visible() bool {
	return len(m.matches) > 0
}

// Matches returns the commands matching the current input.
func (m AutocompleteModel) Matches() []CommandDef {
	return m.matches
}

// Selected returns the highlighted command.
func (m AutocompleteModel) Selected() (CommandDef, bool) {
	if !m.Visible() {
		return CommandDef{}, false
	}
	return m.matches[m.cursor], true
}

// Filter recomputes the matches for the current input. Only a lone command
// word opens the popup; once arguments start it closes.
func (m *AutocompleteModel) Filter(input string) {
	if !strings.HasPrefix(input, "/") || strings.ContainsAny(input, " \n") {
		m.Hide()
		return
	}
	word := strings.ToLower(input)
	m.matches = m.matches[:0]
	for _, c := range m.commands {
		if strings.HasPrefix(c.Name, word) {
			m.matches = append(m.matches, c)
		}
	}
	if m.cursor >= len(m.matches) {
		m.cursor = 0
	}
}

// Hide closes the popup.
func (m *AutocompleteModel) Hide() {
	m.matches = nil
	m.cursor = 0
}

// Move shifts the highlight by delta, wrapping at both ends.
func (m *AutocompleteModel) Move(delta int) {
	n := len(m.matches)
	if n == 0 {
		return
	}
	m.cursor = ((m.cursor+delta)%n + n) % n
}

// Accept closes the popup and returns the highlighted command name.
func (m *AutocompleteModel) Accept() (string, bool) {
	c, ok := m.Selected()
	m.Hide()
	return c.Name, ok
}

// View renders the popup, or "" when it is closed.
func (m AutocompleteModel) View() string {
	if !m.Visible() {
		return ""
	}
	rows := m.matches
	if len(rows) > popupRows {
		rows = rows[:popupRows]
	}

	col := 12
	for _, c := range rows {
		col = max(col, len(c.Usage())+1)
	}
	descW := max(m.width-4, 30) - col - 4

	lines := make([]string, len(rows))
	for i, c := range rows {
		desc := c.Description
		if descW > 0 && len(desc) > descW {
			desc = desc[:descW-1] + theme.SymbolEllipsis
		}
		marker := "  "
		if i == m.cursor {
			marker = theme.TextInfo.Render(theme.SymbolArrowR + " ")
		}
		usage := c.Usage()
		lines[i] = marker + usage + strings.Repeat(" ", col-len(usage)) + " " + theme.TextMuted.Render(desc)
	}
	return theme.Popup.Render(strings.Join(lines, "\n"))
}
