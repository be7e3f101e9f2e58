package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"textgen/internal/adapter/export"
)

// probeTimeout bounds an on-demand health probe.
const probeTimeout = 10 * time.Second

// exportDoneMsg reports the outcome of a transcript export.
type exportDoneMsg struct {
	path string
	err  error
}

// probeDoneMsg reports the outcome of an on-demand health probe.
type probeDoneMsg struct {
	err error
}

// exportCmd writes the transcript off the update loop.
func exportCmd(t *export.Transcript, format, dir, path string) tea.Cmd {
	return func() tea.Msg {
		written, err := export.WriteFile(t, format, dir, path)
		return exportDoneMsg{path: written, err: err}
	}
}

// probeCmd runs a health probe in a background goroutine. The probe publishes
// its report through the channel mailbox; the returned message only carries
// the error for the transcript notice.
func probeCmd(probe func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		return probeDoneMsg{err: probe(ctx)}
	}
}
