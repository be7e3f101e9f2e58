package chat

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"textgen/internal/domain"
	"textgen/internal/usecase/scheduling"
)

// mailbox holds the newest snapshot and health report until the update loop
// collects them. Producers never block.
type mailbox struct {
	mu     sync.Mutex
	snap   *domain.Snapshot
	health *scheduling.HealthReport
	wake   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newMailbox() *mailbox {
	return &mailbox{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (b *mailbox) putSnapshot(s domain.Snapshot) {
	b.mu.Lock()
	if b.snap == nil || s.Version > b.snap.Version {
		b.snap = &s
	}
	b.mu.Unlock()
	b.signal()
}

func (b *mailbox) putHealth(r scheduling.HealthReport) {
	b.mu.Lock()
	b.health = &r
	b.mu.Unlock()
	b.signal()
}

func (b *mailbox) signal() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *mailbox) take() mailboxMsg {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := mailboxMsg{snapshot: b.snap, health: b.health}
	b.snap, b.health = nil, nil
	return msg
}

// wait returns a command that blocks until the mailbox has content or is
// closed.
func (b *mailbox) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.wake:
			return b.take()
		case <-b.done:
			return nil
		}
	}
}

func (b *mailbox) close() {
	b.once.Do(func() { close(b.done) })
}

// TUIChannel runs the chat model as a full-screen Bubble Tea program and
// forwards session and health updates into it.
type TUIChannel struct {
	logger *slog.Logger
	box    *mailbox

	mu      sync.Mutex
	program *tea.Program
}

// NewTUIChannel creates a new TUI channel.
func NewTUIChannel(logger *slog.Logger) *TUIChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &TUIChannel{
		logger: logger,
		box:    newMailbox(),
	}
}

// Notify queues a session snapshot for display. It is meant to be the
// session's change callback and never blocks.
func (c *TUIChannel) Notify(snap domain.Snapshot) {
	c.box.putSnapshot(snap)
}

// PublishHealth queues a health report for display. It never blocks.
func (c *TUIChannel) PublishHealth(r scheduling.HealthReport) {
	c.box.putHealth(r)
}

// Start creates the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func (c *TUIChannel) Start(ctx context.Context, deps ChatModelDeps) error {
	if deps.Logger == nil {
		deps.Logger = c.logger
	}
	deps.Listen = c.box.wait
	model := NewChatModel(deps)

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	c.mu.Lock()
	c.program = program
	c.mu.Unlock()
	defer c.box.close()

	// Monitor context cancellation to quit the program.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			program.Send(QuitMsg{})
		case <-stop:
		}
	}()

	c.logger.Debug("tui started")
	_, err := program.Run()
	c.logger.Debug("tui stopped", "error", err)
	return err
}

// Stop signals the Bubble Tea program to quit.
func (c *TUIChannel) Stop(_ context.Context) error {
	c.mu.Lock()
	p := c.program
	c.mu.Unlock()
	if p != nil {
		p.Send(QuitMsg{})
	}
	return nil
}
