package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"textgen/internal/adapter/generator"
	"textgen/internal/domain"
	"textgen/internal/infra/config"
	"textgen/internal/infra/logger"
	"textgen/internal/infra/tracer"
)

// app holds the infrastructure shared by every command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	client *generator.Client
	gen    domain.Generator

	cleanups []func()
}

type appOptions struct {
	// logOutput replaces cfg.Logger before the logger is built.
	logOutput func(config.LoggerConfig) config.LoggerConfig
	// traceWriter is where the stdout span exporter writes. Nil means stdout.
	traceWriter io.Writer
}

// newApp builds the logger, tracer and generator client from cfg.
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	a := &app{cfg: cfg}

	logCfg := cfg.Logger
	if opts.logOutput != nil {
		logCfg = opts.logOutput(logCfg)
	}
	log, logCloser, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	a.logger = log
	a.onClose(func() { _ = logCloser() })

	var traceOpts []tracer.Option
	if opts.traceWriter != nil {
		traceOpts = append(traceOpts, tracer.WithWriter(opts.traceWriter))
	}
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer, traceOpts...)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("tracer: %w", err)
	}
	a.onClose(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracerShutdown(shutdownCtx)
	})

	client, err := generator.NewClient(cfg.Generator, log)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("generator: %w", err)
	}
	a.client = client
	a.gen = client
	if cfg.Generator.CircuitBreaker.Enabled {
		a.gen = generator.NewCircuitBreakerGenerator(client, cfg.Generator.CircuitBreaker, log)
	}

	log.Debug("generator ready",
		"base_url", client.BaseURL(),
		"circuit_breaker", cfg.Generator.CircuitBreaker.Enabled,
		"requests_per_minute", cfg.Generator.RequestsPerMinute,
	)
	return a, nil
}

// onClose registers fn to run on close, in reverse order of registration.
func (a *app) onClose(fn func()) {
	a.cleanups = append(a.cleanups, fn)
}

func (a *app) close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}

// params returns the configured generation parameters for prefix.
func (a *app) params(prefix string) domain.GenerationParams {
	return domain.GenerationParams{
		Prefix:      prefix,
		MaxLength:   a.cfg.Generation.MaxLength,
		Temperature: a.cfg.Generation.Temperature,
	}
}
