package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"textgen/internal/domain"
	"textgen/internal/usecase/session"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "generate [prefix...]",
		Short: "Generate one continuation and print it as it is revealed",
		Long: `Generate sends the prefix to the service once and prints the continuation
word by word. Ctrl+C stops the reveal; the words shown so far are kept.`,
		Example: `  textgen generate "ایک دن"
  textgen generate --max-length 100 --temperature 1.2 "بہت پہلے"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, strings.Join(args, " "), interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "delay between revealed words (default from config)")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *rootOptions, prefix string, interval time.Duration) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	if interval <= 0 {
		interval = cfg.Stream.Interval
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{traceWriter: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer a.close()

	printer := newStreamPrinter(cmd.OutOrStdout())
	ctrl := session.NewController(session.Deps{
		Generator: a.gen,
		Interval:  interval,
		Text:      session.TextFor(cfg.UI.Locale),
		Logger:    a.logger,
		OnChange:  printer.update,
	})
	defer ctrl.Close()

	if !ctrl.Submit(a.params(prefix)) {
		return errors.New("generation could not be started")
	}

	select {
	case <-printer.done:
	case <-ctx.Done():
		ctrl.Cancel()
	}
	snap := ctrl.Snapshot()
	printer.update(snap)
	printer.finish()

	if e := snap.LastError; e != nil && e.Kind != domain.KindCancelled {
		return fmt.Errorf("%s: %s", e.Kind, e.Message)
	}
	return nil
}

// streamPrinter writes the growing assistant reply to w as snapshots arrive.
// Snapshots may be delivered out of order; older versions are ignored.
type streamPrinter struct {
	w io.Writer

	mu      sync.Mutex
	version uint64
	printed int
	done    chan struct{}
	once    sync.Once
}

func newStreamPrinter(w io.Writer) *streamPrinter {
	return &streamPrinter{w: w, done: make(chan struct{})}
}

func (p *streamPrinter) update(s domain.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.Version <= p.version {
		return
	}
	p.version = s.Version

	if reply, ok := lastReply(s.Messages); ok && len(reply) > p.printed {
		fmt.Fprint(p.w, reply[p.printed:])
		p.printed = len(reply)
	}
	if !s.Phase.Busy() {
		p.once.Do(func() { close(p.done) })
	}
}

// finish terminates the printed line.
func (p *streamPrinter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.printed > 0 {
		fmt.Fprintln(p.w)
	}
}

// lastReply returns the content of the final message when it was written by
// the assistant.
func lastReply(msgs []domain.Message) (string, bool) {
	if n := len(msgs); n > 0 && msgs[n-1].Role == domain.RoleAssistant {
		return msgs[n-1].Content, true
	}
	return "", false
}
