package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"textgen/internal/domain"
	"textgen/internal/infra/config"
)

// Set by -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath  string
	baseURL     string
	maxLength   int
	temperature float64
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "textgen",
		Short: "Terminal client for an Urdu trigram text generator",
		Long: `textgen sends a prefix to a trigram text-generation service and reveals
the continuation word by word.

Running textgen without a command opens the interactive chat. Type a prefix
and press Enter; /help lists the slash commands.

Quick Start:
  textgen                           # interactive chat
  textgen generate "ایک دن"         # one continuation on stdout
  textgen health                    # probe the service`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default $HOME/.textgen/config.yaml)")
	flags.StringVar(&opts.baseURL, "url", "", "generation service base URL")
	flags.IntVar(&opts.maxLength, "max-length", 0, fmt.Sprintf("max words to generate (%d-%d)", domain.MinMaxLength, domain.MaxMaxLength))
	flags.Float64Var(&opts.temperature, "temperature", 0, fmt.Sprintf("sampling temperature (%.1f-%.1f)", domain.MinTemperature, domain.MaxTemperature))
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	cmd.AddCommand(
		newChatCmd(opts),
		newGenerateCmd(opts),
		newHealthCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, opts)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "textgen %s\n  commit: %s\n  built:  %s\n", version, commit, date)
		},
	}
}

// path returns the config file to load.
func (o *rootOptions) path() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.DefaultPath()
}

// loadConfig reads the config file and applies flag overrides. Only flags the
// user actually set take effect.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.path())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfigLoad, err)
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Generator.BaseURL = o.baseURL
	}
	if flags.Changed("max-length") {
		cfg.Generation.MaxLength = o.maxLength
	}
	if flags.Changed("temperature") {
		cfg.Generation.Temperature = o.temperature
	}
	if o.verbose {
		cfg.Logger.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfigLoad, err)
	}
	return cfg, nil
}
