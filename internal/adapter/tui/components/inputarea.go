package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"textgen/internal/adapter/tui/theme"
	"textgen/internal/domain"
)

// InputSubmitMsg carries a prefix or slash command the user submitted.
type InputSubmitMsg struct {
	Value string
}

// InputAreaModel is the prefix editor. It follows the session phase: while a
// generation runs the editor is replaced by a spinner line and ignores keys.
type InputAreaModel struct {
	Textarea     textarea.Model
	Autocomplete AutocompleteModel

	spinner spinner.Model
	phase   domain.Phase
	blurred bool // scroll mode while idle
	width   int
}

// NewInputArea creates an idle input area showing placeholder while empty.
func NewInputArea(placeholder string, commands []CommandDef) InputAreaModel {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = theme.InputPrompt
	ta.FocusedStyle.Placeholder = theme.InputPlaceholder
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return InputAreaModel{
		Textarea:     ta,
		Autocomplete: NewAutocomplete(commands),
		spinner:      sp,
	}
}

// SetWidth updates the editor and popup widths.
func (m *InputAreaModel) SetWidth(w int) {
	m.width = w
	m.Textarea.SetWidth(w - 2)
	m.Autocomplete.SetWidth(w)
}

// SetPhase follows the session phase. A busy session closes the popup and
// takes focus away from the editor; returning to idle gives it back unless
// the user is scrolling.
func (m *InputAreaModel) SetPhase(p domain.Phase) {
	m.phase = p
	if p.Busy() {
		m.Autocomplete.Hide()
	}
	m.refocus()
}

// SetBlurred moves focus between the editor and the transcript.
func (m *InputAreaModel) SetBlurred(blurred bool) {
	m.blurred = blurred
	m.refocus()
}

func (m *InputAreaModel) refocus() {
	if m.Enabled() {
		m.Textarea.Focus()
	} else {
		m.Textarea.Blur()
	}
}

// Enabled reports whether key presses reach the editor.
func (m InputAreaModel) Enabled() bool {
	return !m.phase.Busy() && !m.blurred
}

// Tick starts the spinner animation.
func (m InputAreaModel) Tick() tea.Cmd {
	return m.spinner.Tick
}

// Reset clears the input.
func (m *InputAreaModel) Reset() {
	m.Textarea.Reset()
	m.Autocomplete.Hide()
}

// SetValue replaces the input text and moves the cursor to the end.
func (m *InputAreaModel) SetValue(v string) {
	m.Textarea.SetValue(v)
	m.Textarea.CursorEnd()
}

// Value returns the current input text.
func (m InputAreaModel) Value() string {
	return m.Textarea.Value()
}

// Update animates the spinner and, when enabled, edits the prefix. Enter
// submits; with the popup open it completes the highlighted command instead.
func (m InputAreaModel) Update(msg tea.Msg) (InputAreaModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.MouseMsg:
		return m, nil
	case tea.KeyMsg:
		if !m.Enabled() {
			return m, nil
		}
		if m.Autocomplete.Visible() {
			if handled := m.popupKey(msg); handled {
				return m, nil
			}
		}
		if msg.Type == tea.KeyEnter {
			value := strings.TrimSpace(m.Textarea.Value())
			if value == "" {
				return m, nil
			}
			m.Reset()
			return m, func() tea.Msg { return InputSubmitMsg{Value: value} }
		}
	default:
		if !m.Enabled() {
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.Textarea, cmd = m.Textarea.Update(msg)
	m.Autocomplete.Filter(m.Textarea.Value())
	return m, cmd
}

func (m *InputAreaModel) popupKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.Autocomplete.Move(1)
	case tea.KeyShiftTab, tea.KeyUp:
		m.Autocomplete.Move(-1)
	case tea.KeyEnter:
		if name, ok := m.Autocomplete.Accept(); ok {
			m.SetValue(name + " ")
		}
	case tea.KeyEsc:
		m.Autocomplete.Hide()
	default:
		return false
	}
	return true
}

// View renders the editor with the popup above it, or the activity line
// while a generation runs.
func (m InputAreaModel) View() string {
	if m.phase.Busy() {
		return theme.InputBusy.Render("> generating... (Ctrl+C to stop)") + "\n" +
			m.spinner.View() + " " + theme.TextInfo.Render(PhaseActivity(m.phase))
	}
	if popup := m.Autocomplete.View(); popup != "" {
		return popup + "\n" + m.Textarea.View()
	}
	return m.Textarea.View()
}
