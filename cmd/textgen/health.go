package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"textgen/internal/adapter/tui/theme"
	"textgen/internal/domain"
)

const healthTimeout = 10 * time.Second

var (
	labelStyle = lipgloss.NewStyle().Foreground(theme.ColorMuted).Width(14)
	okStyle    = theme.HealthOnline
	badStyle   = theme.HealthOffline
)

func newHealthCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe the generation service once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, appOptions{traceWriter: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
			defer cancel()

			start := time.Now()
			hs, err := a.client.Health(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(hs)
			}
			printHealth(cmd.OutOrStdout(), a.client.BaseURL(), hs, time.Since(start))
			if !hs.Healthy() {
				return fmt.Errorf("%w: status %q", domain.ErrHealthCheck, hs.Status)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw health document")
	return cmd
}

func printHealth(w io.Writer, url string, hs *domain.HealthStatus, took time.Duration) {
	status := okStyle.Render(theme.SymbolSuccess + " " + hs.Status)
	if !hs.Healthy() {
		status = badStyle.Render(theme.SymbolError + " " + hs.Status)
	}
	row := func(label string, value any) {
		fmt.Fprintf(w, "%s%v\n", labelStyle.Render(label), value)
	}
	row("Service", url)
	row("Status", status)
	row("Latency", took.Round(time.Millisecond))
	row("Vocabulary", hs.VocabSize)
	row("Unigrams", hs.Model.Unigrams)
	row("Bigrams", hs.Model.Bigrams)
	row("Trigrams", hs.Model.Trigrams)
	row("Total tokens", hs.Model.TotalTokens)
}
