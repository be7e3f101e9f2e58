package chat

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"textgen/internal/adapter/export"
	"textgen/internal/adapter/tui/components"
	"textgen/internal/adapter/tui/theme"
	"textgen/internal/adapter/tui/uxerror"
	"textgen/internal/domain"
)

// Examples are the seed prefixes offered by /examples.
var Examples = []string{"ایک دن", "بہت پہلے", "ایک بار"}

// Session is the conversation the chat model drives.
type Session interface {
	Submit(params domain.GenerationParams) bool
	Cancel() bool
	Clear() bool
	DismissError() bool
	SetInterval(d time.Duration) bool
	Interval() time.Duration
	Snapshot() domain.Snapshot
}

// ChatModelDeps are dependencies injected into the chat model.
type ChatModelDeps struct {
	Session Session
	// Listen returns a command that blocks until the session or the health
	// monitor has news. Nil disables background updates.
	Listen        func() tea.Cmd
	Probe         func(ctx context.Context) error // nil disables /health
	Logger        *slog.Logger
	Params        domain.GenerationParams // initial max length and temperature
	AssistantName string
	BaseURL       string
	ExportDir     string
	Placeholder   string
	Now           func() time.Time
}

// ChatModel is the root Bubble Tea model for the chat TUI.
type ChatModel struct {
	deps ChatModelDeps

	// Sub-models
	header    components.HeaderModel
	chatView  components.ChatViewModel
	input     components.InputAreaModel
	statusBar components.StatusBarModel

	// State
	snap     domain.Snapshot
	notices  []components.Notice
	params   domain.GenerationParams
	speed    StreamSpeed
	width    int
	height   int
	quitting bool
	vimMode  bool // true when input is blurred and vim keys are active
}

// NewChatModel creates the root chat model.
func NewChatModel(deps ChatModelDeps) ChatModel {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.AssistantName == "" {
		deps.AssistantName = theme.SymbolBot
	}

	placeholder := deps.Placeholder
	if placeholder == "" {
		placeholder = "Type a prefix..."
	}

	m := ChatModel{
		deps:      deps,
		header:    components.NewHeader(deps.AssistantName, deps.BaseURL),
		chatView:  components.NewChatView(deps.AssistantName, 1000),
		input:     components.NewInputArea(placeholder, commandDefs),
		statusBar: components.NewStatusBar(),
		params:    deps.Params.Clamp(),
		speed:     SpeedForInterval(deps.Session.Interval()),
		snap:      deps.Session.Snapshot(),
	}
	m.input.SetPhase(m.snap.Phase)
	m.refreshChrome()
	m.refreshMessages()
	return m
}

var commandDefs = []components.CommandDef{
	{Name: "/help", Description: "Show available commands"},
	{Name: "/clear", Description: "Clear conversation"},
	{Name: "/cancel", Description: "Cancel active generation"},
	{Name: "/length", Args: "<50-500>", Description: "Set max length"},
	{Name: "/temp", Args: "<0.1-2.0>", Description: "Set temperature"},
	{Name: "/speed", Description: "Cycle reveal speed"},
	{Name: "/settings", Description: "Show current settings"},
	{Name: "/examples", Description: "List example prefixes"},
	{Name: "/example", Args: "<n>", Description: "Put an example in the input"},
	{Name: "/export", Args: "[fmt] [path]", Description: "Save the transcript"},
	{Name: "/health", Description: "Probe the service now"},
	{Name: "/dismiss", Description: "Dismiss the error notice"},
	{Name: "/quit", Description: "Exit textgen"},
}

// Init initializes sub-models.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(
		m.input.Tick(),
		m.listen(),
	)
}

func (m ChatModel) listen() tea.Cmd {
	if m.deps.Listen == nil {
		return nil
	}
	return m.deps.Listen()
}

// Update handles all incoming messages.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.InputSubmitMsg:
		return m.handleSubmit(msg.Value)

	case SnapshotMsg:
		m.applySnapshot(msg.Snapshot)
		return m, nil

	case HealthMsg:
		m.applyHealth(msg.Report.Online(), msg.Report.Status)
		return m, nil

	case mailboxMsg:
		if msg.snapshot != nil {
			m.applySnapshot(*msg.snapshot)
		}
		if msg.health != nil {
			m.applyHealth(msg.health.Online(), msg.health.Status)
		}
		return m, m.listen()

	case exportDoneMsg:
		if msg.err != nil {
			m.addNotice(components.RoleError, uxerror.Humanize(msg.err).Render())
			return m, nil
		}
		m.addNotice(components.RoleSystem, fmt.Sprintf("%s Transcript saved to %s", theme.SymbolSuccess, msg.path))
		return m, nil

	case probeDoneMsg:
		if msg.err != nil {
			m.addNotice(components.RoleError, uxerror.Humanize(msg.err).Render())
			return m, nil
		}
		m.addNotice(components.RoleSystem, theme.SymbolSuccess+" Service is online.")
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	var inputCmd, viewCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.chatView, viewCmd = m.chatView.Update(msg)
	return m, tea.Batch(inputCmd, viewCmd)
}

// View renders the entire chat UI.
func (m ChatModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 {
		return "  Initializing..."
	}

	parts := []string{m.header.View(), m.chatView.View()}
	if n := m.errorNotice(); n != "" {
		parts = append(parts, n)
	}
	parts = append(parts, components.Divider(m.width), m.input.View(), m.statusBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m ChatModel) errorNotice() string {
	if m.snap.LastError == nil || m.width == 0 {
		return ""
	}
	body := uxerror.Describe(*m.snap.LastError).Render() + "\n" +
		theme.TextMuted.Render("Esc or /dismiss to close")
	return theme.NoticeBorder.Width(m.width - 2).Render(body)
}

// layout recalculates sizes for all sub-models.
func (m *ChatModel) layout() {
	headerH := 1
	inputH := 3
	statusH := 1
	dividerH := 1
	noticeH := 0
	if n := m.errorNotice(); n != "" {
		noticeH = lipgloss.Height(n)
	}
	contentH := m.height - headerH - inputH - statusH - dividerH - noticeH
	if contentH < 5 {
		contentH = 5
	}

	m.header.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.chatView.SetSize(m.width, contentH)
	m.input.SetWidth(m.width)
}

func (m ChatModel) busy() bool {
	return m.snap.Phase.Busy()
}

// applySnapshot installs snap unless a newer one was already applied.
func (m *ChatModel) applySnapshot(snap domain.Snapshot) {
	if snap.Version < m.snap.Version {
		return
	}
	hadError := m.snap.LastError != nil
	wasBusy := m.busy()
	m.snap = snap

	if len(snap.Messages) == 0 {
		kept := m.notices[:0]
		for _, n := range m.notices {
			if n.After == 0 {
				kept = append(kept, n)
			}
		}
		m.notices = kept
	}

	if wasBusy != m.busy() {
		m.vimMode = m.busy()
		m.input.SetBlurred(m.vimMode)
	}
	m.input.SetPhase(snap.Phase)
	m.refreshChrome()
	m.refreshMessages()
	if hadError != (snap.LastError != nil) && m.width > 0 {
		m.layout()
	}
}

// sync pulls the session state after a synchronous operation. Notifications
// arrive through the mailbox later and are dropped by version.
func (m *ChatModel) sync() {
	m.applySnapshot(m.deps.Session.Snapshot())
}

func (m *ChatModel) applyHealth(online bool, status *domain.HealthStatus) {
	if online {
		m.header.Health = components.HealthOnline
	} else {
		m.header.Health = components.HealthOffline
	}
	m.header.Detail = ""
	if status != nil && status.VocabSize > 0 {
		m.header.Detail = fmt.Sprintf("vocab %d", status.VocabSize)
	}
}

func (m *ChatModel) refreshMessages() {
	m.chatView.Show(m.snap.Messages, m.notices)
}

// refreshChrome copies the settings and phase into the status bar.
func (m *ChatModel) refreshChrome() {
	m.statusBar.Phase = m.snap.Phase
	m.statusBar.Params = m.params
	m.statusBar.Speed = m.speed.String()
	m.statusBar.Scrolling = m.vimMode
}

func (m *ChatModel) addNotice(role components.MessageRole, content string) {
	m.addNoticeMsg(components.ChatMessage{Role: role, Content: content})
}

func (m *ChatModel) addNoticeMsg(msg components.ChatMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = m.deps.Now()
	}
	m.notices = append(m.notices, components.Notice{After: len(m.snap.Messages), Msg: msg})
	m.refreshMessages()
}

// isSGRMouseSequence detects SGR mouse escape sequences that may leak
// through as key input (e.g. "<65;38;21M"). These are emitted when
// mouse cell motion tracking is enabled and some terminals pass them
// as key events instead of tea.MouseMsg.
func isSGRMouseSequence(s string) bool {
	if len(s) < 5 || s[0] != '<' {
		return false
	}
	last := s[len(s)-1]
	if last != 'M' && last != 'm' {
		return false
	}
	for _, r := range s[1 : len(s)-1] {
		if r != ';' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// isMouseEscapeLeak detects mouse escape sequences that leaked through
// as key input instead of tea.MouseMsg. Covers SGR, X11 basic, and
// URXVT formats that appear during rapid trackpad scrolling.
func isMouseEscapeLeak(s string) bool {
	if isSGRMouseSequence(s) {
		return true
	}
	// X11 basic mouse format: [M or [m followed by coordinate bytes.
	if len(s) >= 2 && s[0] == '[' && (s[1] == 'M' || s[1] == 'm') {
		return true
	}
	// URXVT format: [digits;digits;digitsM
	if len(s) >= 5 && s[0] == '[' && s[len(s)-1] == 'M' {
		for _, r := range s[1 : len(s)-1] {
			if r != ';' && (r < '0' || r > '9') {
				return false
			}
		}
		return true
	}
	return false
}

// handleKey processes keyboard input.
func (m ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isMouseEscapeLeak(msg.String()) {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.busy() {
			m.deps.Session.Cancel()
			m.sync()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case tea.KeyCtrlL:
		return m.handleSlashCommand("/clear", nil)

	case tea.KeyCtrlG:
		// Generate from the current input, which may be empty.
		if m.busy() {
			return m, nil
		}
		value := m.input.Value()
		m.input.Reset()
		return m.submit(value)

	case tea.KeyEsc:
		if m.input.Autocomplete.Visible() {
			break
		}
		if m.busy() {
			m.deps.Session.Cancel()
			m.sync()
			return m, nil
		}
		if m.snap.LastError != nil {
			m.deps.Session.DismissError()
			m.sync()
			return m, nil
		}
		if !m.vimMode {
			m.vimMode = true
			m.input.SetBlurred(true)
			m.refreshChrome()
			return m, nil
		}

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	// Vim mode: j/k scroll, g/G jump, i to exit.
	if m.vimMode || m.busy() {
		switch msg.String() {
		case "j", "down":
			m.chatView.Viewport.LineDown(3)
		case "k", "up":
			m.chatView.Viewport.LineUp(3)
		case "g":
			m.chatView.Viewport.GotoTop()
		case "G":
			m.chatView.Viewport.GotoBottom()
		case "i":
			if !m.busy() {
				m.vimMode = false
				m.input.SetBlurred(false)
				m.refreshChrome()
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit processes user input submission.
func (m ChatModel) handleSubmit(value string) (tea.Model, tea.Cmd) {
	if cmd, args, ok := components.ParseSlashCommand(value); ok {
		return m.handleSlashCommand(cmd, args)
	}
	return m.submit(value)
}

func (m ChatModel) submit(prefix string) (tea.Model, tea.Cmd) {
	params := m.params
	params.Prefix = prefix
	if !m.deps.Session.Submit(params) {
		m.addNotice(components.RoleSystem, "A generation is already running. Press Ctrl+C to stop it.")
		return m, nil
	}
	m.deps.Logger.Debug("prefix submitted", "prefix_len", len(prefix))
	m.sync()
	return m, nil
}

// handleSlashCommand processes a slash command.
func (m ChatModel) handleSlashCommand(cmd string, args []string) (tea.Model, tea.Cmd) {
	switch cmd {
	case "/help":
		m.addNoticeMsg(components.ChatMessage{
			Role:     components.RoleSystem,
			Content:  helpText(),
			Markdown: true,
		})
		return m, nil

	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	case "/clear":
		if !m.deps.Session.Clear() {
			m.addNotice(components.RoleSystem, "Cannot clear while a generation is running.")
			return m, nil
		}
		m.notices = nil
		m.sync()
		m.addNotice(components.RoleSystem, theme.SymbolSuccess+" Conversation cleared.")
		return m, nil

	case "/cancel":
		if !m.deps.Session.Cancel() {
			m.addNotice(components.RoleSystem, "No active generation to cancel.")
			return m, nil
		}
		m.sync()
		return m, nil

	case "/dismiss":
		if !m.deps.Session.DismissError() {
			m.addNotice(components.RoleSystem, "No error to dismiss.")
			return m, nil
		}
		m.sync()
		return m, nil

	case "/speed":
		next := CycleStreamSpeed(m.speed)
		if !m.deps.Session.SetInterval(next.Interval()) {
			m.addNotice(components.RoleSystem, "Speed can only be changed while idle.")
			return m, nil
		}
		m.speed = next
		m.refreshChrome()
		m.addNotice(components.RoleSystem, fmt.Sprintf("Reveal speed: %s (%s per word)", next, next.Interval()))
		return m, nil

	case "/length":
		return m.handleLength(args)

	case "/temp", "/temperature":
		return m.handleTemperature(args)

	case "/settings":
		m.addNotice(components.RoleSystem, m.settingsText())
		return m, nil

	case "/examples":
		var sb strings.Builder
		sb.WriteString("Example prefixes:")
		for i, ex := range Examples {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, ex))
		}
		sb.WriteString("\nUse /example <n> to put one in the input.")
		m.addNotice(components.RoleSystem, sb.String())
		return m, nil

	case "/example":
		n := 0
		if len(args) == 1 {
			n, _ = strconv.Atoi(args[0])
		}
		if n < 1 || n > len(Examples) {
			m.addNotice(components.RoleSystem, fmt.Sprintf("Usage: /example <1-%d>", len(Examples)))
			return m, nil
		}
		m.input.SetValue(Examples[n-1])
		return m, nil

	case "/export":
		return m.handleExport(args)

	case "/health":
		if m.deps.Probe == nil {
			m.addNotice(components.RoleSystem, "Health probing is not configured.")
			return m, nil
		}
		return m, probeCmd(m.deps.Probe)

	default:
		m.addNotice(components.RoleSystem, fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
		return m, nil
	}
}

func (m ChatModel) handleLength(args []string) (tea.Model, tea.Cmd) {
	if m.busy() {
		m.addNotice(components.RoleSystem, "Settings can only be changed while idle.")
		return m, nil
	}
	if len(args) != 1 {
		m.addNotice(components.RoleSystem, fmt.Sprintf("Usage: /length <%d-%d>", domain.MinMaxLength, domain.MaxMaxLength))
		return m, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		m.addNotice(components.RoleSystem, fmt.Sprintf("Invalid length %q.", args[0]))
		return m, nil
	}
	p := m.params
	p.MaxLength = n
	m.params = p.Clamp()
	m.refreshChrome()
	m.addNotice(components.RoleSystem, clampNote("Max length", strconv.Itoa(m.params.MaxLength), n != m.params.MaxLength))
	return m, nil
}

func (m ChatModel) handleTemperature(args []string) (tea.Model, tea.Cmd) {
	if m.busy() {
		m.addNotice(components.RoleSystem, "Settings can only be changed while idle.")
		return m, nil
	}
	if len(args) != 1 {
		m.addNotice(components.RoleSystem, fmt.Sprintf("Usage: /temp <%.1f-%.1f>", domain.MinTemperature, domain.MaxTemperature))
		return m, nil
	}
	t, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		m.addNotice(components.RoleSystem, fmt.Sprintf("Invalid temperature %q.", args[0]))
		return m, nil
	}
	p := m.params
	p.Temperature = t
	m.params = p.Clamp()
	m.refreshChrome()
	m.addNotice(components.RoleSystem, clampNote("Temperature", strconv.FormatFloat(m.params.Temperature, 'f', -1, 64), t != m.params.Temperature))
	return m, nil
}

func clampNote(name, value string, clamped bool) string {
	s := fmt.Sprintf("%s %s set to %s", theme.SymbolSuccess, name, value)
	if clamped {
		s += " (clamped to the allowed range)"
	}
	return s + "."
}

func (m ChatModel) settingsText() string {
	var sb strings.Builder
	sb.WriteString("Settings:")
	fmt.Fprintf(&sb, "\n  Max length   %d  (%d-%d)", m.params.MaxLength, domain.MinMaxLength, domain.MaxMaxLength)
	fmt.Fprintf(&sb, "\n  Temperature  %g  (%.1f-%.1f)", m.params.Temperature, domain.MinTemperature, domain.MaxTemperature)
	fmt.Fprintf(&sb, "\n  Reveal speed %s (%s per word)", m.speed, m.deps.Session.Interval())
	fmt.Fprintf(&sb, "\n  Service      %s (%s)", m.deps.BaseURL, m.header.Health)
	return sb.String()
}

func (m ChatModel) handleExport(args []string) (tea.Model, tea.Cmd) {
	format, path := "md", ""
	switch len(args) {
	case 0:
	case 1:
		if isFormat(args[0]) {
			format = args[0]
		} else {
			path = args[0]
			if ext := strings.TrimPrefix(filepath.Ext(path), "."); isFormat(ext) {
				format = ext
			}
		}
	default:
		format, path = args[0], args[1]
	}
	if len(m.snap.Messages) == 0 {
		m.addNotice(components.RoleSystem, "Nothing to export yet.")
		return m, nil
	}

	t := &export.Transcript{
		Title:      "Transcript",
		Assistant:  m.deps.AssistantName,
		ExportedAt: m.deps.Now(),
		Messages:   append([]domain.Message(nil), m.snap.Messages...),
	}
	return m, exportCmd(t, format, m.deps.ExportDir, path)
}

func isFormat(s string) bool {
	_, err := export.NewExporter(s)
	return err == nil
}

func helpText() string {
	var sb strings.Builder
	sb.WriteString("## Commands\n\n| Command | Description |\n|---|---|\n")
	for _, c := range commandDefs {
		fmt.Fprintf(&sb, "| `%s` | %s |\n", c.Usage(), c.Description)
	}
	sb.WriteString(`
## Keys

| Key | Action |
|---|---|
| Enter | Generate from the typed prefix |
| Ctrl+G | Generate, even with an empty prefix |
| Ctrl+C / Esc | Stop the running generation |
| Esc | Dismiss the error notice, then scroll mode |
| Ctrl+L | Clear conversation |
| PgUp/PgDn | Scroll |
`)
	return sb.String()
}
