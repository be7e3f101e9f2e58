package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"textgen/internal/adapter/tui/chat"
	"textgen/internal/adapter/tui/theme"
	"textgen/internal/infra/config"
	"textgen/internal/infra/logger"
	"textgen/internal/usecase/scheduling"
	"textgen/internal/usecase/session"
)

// runChat opens the full-screen chat and blocks until the user quits.
func runChat(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	// Terminal log output would tear the alternate screen.
	logDir := filepath.Dir(opts.path())
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	logCfg := logger.ForTUI(cfg.Logger, logDir)

	var traceWriter io.Writer = io.Discard
	if cfg.Tracer.Enabled && cfg.Tracer.Exporter == "stdout" {
		w, closeTrace, err := logger.OpenOutput(logCfg.Output)
		if err != nil {
			return fmt.Errorf("open trace output: %w", err)
		}
		defer closeTrace()
		traceWriter = w
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{
		logOutput:   func(config.LoggerConfig) config.LoggerConfig { return logCfg },
		traceWriter: traceWriter,
	})
	if err != nil {
		return err
	}
	defer a.close()

	theme.InitSymbols()

	ch := chat.NewTUIChannel(a.logger)
	ctrl := session.NewController(session.Deps{
		Generator: a.gen,
		Interval:  cfg.Stream.Interval,
		Text:      session.TextFor(cfg.UI.Locale),
		Logger:    a.logger,
		OnChange:  ch.Notify,
	})
	defer ctrl.Close()

	monitor := scheduling.NewHealthMonitor(a.client, ch.PublishHealth, a.logger)
	if cfg.Health.Enabled {
		sched := scheduling.NewScheduler(a.logger)
		if err := monitor.Register(sched, cfg.Health.Schedule); err != nil {
			return fmt.Errorf("health schedule: %w", err)
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				a.logger.Warn("scheduler stop failed", "error", err)
			}
		}()
	}

	a.logger.Info("chat started",
		"base_url", a.client.BaseURL(),
		"locale", cfg.UI.Locale,
		"health", cfg.Health.Enabled,
	)

	err = ch.Start(ctx, chat.ChatModelDeps{
		Session:       ctrl,
		Probe:         monitor.Probe,
		Logger:        a.logger,
		Params:        a.params(""),
		AssistantName: cfg.UI.AssistantName,
		BaseURL:       a.client.BaseURL(),
		ExportDir:     cfg.UI.ExportDir,
		Placeholder:   placeholder(cfg.UI.Locale),
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("chat: %w", err)
	}
	a.logger.Info("chat stopped")
	return nil
}

func placeholder(locale string) string {
	if locale == "en" {
		return "Type a prefix and press Enter (/help for commands)"
	}
	return "یہاں اپنا متن لکھیں... (/help)"
}

