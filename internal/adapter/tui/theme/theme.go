// Package theme holds the colors, styles and glyphs of the textgen TUI.
// Colors are adaptive so the same palette reads on light and dark
// terminals; lipgloss drops them entirely when NO_COLOR is set.
package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Only the colors other packages compose their own styles from are
// exported.
var (
	ColorInfo   = lipgloss.AdaptiveColor{Light: "#00695c", Dark: "#4db6ac"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#6d6d6d", Dark: "#a0a0a0"}
	ColorBorder = lipgloss.AdaptiveColor{Light: "#c8c8c8", Dark: "#5a5a5a"}

	colorFocus  = lipgloss.AdaptiveColor{Light: "#00796b", Dark: "#26a69a"}
	colorOK     = lipgloss.AdaptiveColor{Light: "#33691e", Dark: "#9ccc65"}
	colorDanger = lipgloss.AdaptiveColor{Light: "#b71c1c", Dark: "#e57373"}
	colorScript = lipgloss.AdaptiveColor{Light: "#4e342e", Dark: "#d7ccc8"}
	colorFaint  = lipgloss.AdaptiveColor{Light: "#9e9e9e", Dark: "#6f6f6f"}
	colorBar    = lipgloss.AdaptiveColor{Light: "#eeeeee", Dark: "#262626"}
)

var (
	Dim        = lipgloss.NewStyle().Faint(true)
	TextError  = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	TextInfo   = lipgloss.NewStyle().Foreground(ColorInfo)
	TextAccent = lipgloss.NewStyle().Foreground(colorScript)
	TextMuted  = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Header.
var (
	HeaderTitle   = lipgloss.NewStyle().Foreground(colorScript).Bold(true)
	HealthOnline  = lipgloss.NewStyle().Foreground(colorOK)
	HealthOffline = lipgloss.NewStyle().Foreground(colorDanger)
	HealthUnknown = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Transcript. The prefix the user typed and the text the service produced
// get distinct label colors; notices use the muted and danger colors.
var (
	UserLabel   = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
	BotLabel    = lipgloss.NewStyle().Foreground(colorScript).Bold(true)
	SystemLabel = lipgloss.NewStyle().Foreground(ColorMuted).Bold(true)
	ErrorLabel  = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	Timestamp   = lipgloss.NewStyle().Foreground(colorFaint).Faint(true)

	NoticeBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDanger).
			Padding(0, 1)
)

// Input and command popup.
var (
	InputPrompt      = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
	InputPlaceholder = lipgloss.NewStyle().Foreground(colorFaint)
	InputBusy        = lipgloss.NewStyle().Faint(true)
	Spinner          = lipgloss.NewStyle().Foreground(ColorInfo)

	Popup = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorFocus).
		Padding(0, 1)
)

// Status bar.
var (
	StatusBar = lipgloss.NewStyle().
			Foreground(colorFaint).
			Background(colorBar).
			Padding(0, 1)

	StatusKey   = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
	StatusPhase = lipgloss.NewStyle().Foreground(ColorInfo)
)

// MaxContentWidth caps the transcript width on wide terminals.
const MaxContentWidth = 100

// MinHeaderDetailWidth is the narrowest terminal that still shows the service
// URL in the header.
const MinHeaderDetailWidth = 60
