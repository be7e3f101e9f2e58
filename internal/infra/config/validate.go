package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"textgen/internal/domain"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateGenerator(cfg, ve)
	validateGeneration(cfg, ve)
	validateStream(cfg, ve)
	validateUI(cfg, ve)
	validateHealth(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateGenerator(cfg *Config, ve *ValidationError) {
	g := cfg.Generator
	if g.BaseURL == "" {
		ve.Add("generator.base_url must not be empty")
	} else if u, err := url.Parse(g.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		ve.Add("generator.base_url %q must be an absolute http(s) URL", g.BaseURL)
	}
	if g.ConnTimeout < 0 {
		ve.Add("generator.conn_timeout must be >= 0")
	}
	if g.RespTimeout < 0 {
		ve.Add("generator.resp_timeout must be >= 0")
	}
	if g.RequestsPerMinute < 0 {
		ve.Add("generator.requests_per_minute must be >= 0")
	}
	if g.RequestsPerMinute > 0 && g.Burst <= 0 {
		ve.Add("generator.burst must be > 0 when requests_per_minute is set")
	}
	if g.CircuitBreaker.Enabled && g.CircuitBreaker.Timeout < 0 {
		ve.Add("generator.circuit_breaker.timeout must be >= 0")
	}
}

func validateGeneration(cfg *Config, ve *ValidationError) {
	g := cfg.Generation
	if g.MaxLength < domain.MinMaxLength || g.MaxLength > domain.MaxMaxLength {
		ve.Add("generation.max_length %d must be within [%d, %d]",
			g.MaxLength, domain.MinMaxLength, domain.MaxMaxLength)
	}
	// Negated so NaN fails.
	if !(g.Temperature >= domain.MinTemperature && g.Temperature <= domain.MaxTemperature) {
		ve.Add("generation.temperature %g must be within [%g, %g]",
			g.Temperature, domain.MinTemperature, domain.MaxTemperature)
	}
}

func validateStream(cfg *Config, ve *ValidationError) {
	if cfg.Stream.Interval <= 0 {
		ve.Add("stream.interval must be > 0")
	}
	if cfg.Stream.Interval > 5*time.Second {
		ve.Add("stream.interval must be <= 5s")
	}
}

var validLocales = map[string]bool{"ur": true, "en": true}

func validateUI(cfg *Config, ve *ValidationError) {
	if !validLocales[cfg.UI.Locale] {
		ve.Add("ui.locale %q is invalid (want: ur, en)", cfg.UI.Locale)
	}
}

func validateHealth(cfg *Config, ve *ValidationError) {
	if cfg.Health.Enabled && cfg.Health.Schedule == "" {
		ve.Add("health.schedule must not be empty when health is enabled")
	}
}

var validLogLevels = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
var validLogFormats = map[string]bool{"": true, "text": true, "json": true}

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLogLevels[strings.ToLower(cfg.Logger.Level)] {
		ve.Add("logger.level %q is invalid (want: debug, info, warn, error)", cfg.Logger.Level)
	}
	if !validLogFormats[strings.ToLower(cfg.Logger.Format)] {
		ve.Add("logger.format %q is invalid (want: text, json)", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	switch cfg.Tracer.Exporter {
	case "", "noop", "stdout":
	default:
		ve.Add("tracer.exporter %q is invalid (want: noop, stdout)", cfg.Tracer.Exporter)
	}
}
