package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Generator.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.Generator.BaseURL, DefaultBaseURL)
	}
	if cfg.Generation.MaxLength != 200 {
		t.Errorf("MaxLength = %d, want 200", cfg.Generation.MaxLength)
	}
	if cfg.Generation.Temperature != 0.8 {
		t.Errorf("Temperature = %g, want 0.8", cfg.Generation.Temperature)
	}
	if cfg.Stream.Interval != 50*time.Millisecond {
		t.Errorf("Stream.Interval = %v, want 50ms", cfg.Stream.Interval)
	}
	if cfg.Generator.RespTimeout != 0 {
		t.Errorf("RespTimeout = %v, want no limit", cfg.Generator.RespTimeout)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, "info")
	}
}

func TestLoadNonExistentReturnsDefaults(t *testing.T) {
	cfg, err := Load("/tmp/nonexistent-textgen-config-12345.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generation.MaxLength != 200 {
		t.Errorf("expected defaults, got MaxLength=%d", cfg.Generation.MaxLength)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
generator:
  base_url: "http://localhost:8000"
  requests_per_minute: 0
generation:
  max_length: 120
  temperature: 1.5
stream:
  interval: 20ms
ui:
  locale: en
logger:
  level: "debug"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generator.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", cfg.Generator.BaseURL)
	}
	if cfg.Generation.MaxLength != 120 {
		t.Errorf("MaxLength = %d, want 120", cfg.Generation.MaxLength)
	}
	if cfg.Generation.Temperature != 1.5 {
		t.Errorf("Temperature = %g, want 1.5", cfg.Generation.Temperature)
	}
	if cfg.Stream.Interval != 20*time.Millisecond {
		t.Errorf("Stream.Interval = %v, want 20ms", cfg.Stream.Interval)
	}
	if cfg.UI.Locale != "en" {
		t.Errorf("Locale = %q, want en", cfg.UI.Locale)
	}
	// Unset sections keep their defaults.
	if !cfg.Generator.CircuitBreaker.Enabled {
		t.Error("circuit breaker default lost")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("generation:\n  max_length: 10\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("err = %T, want *ValidationError", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TEXTGEN_GENERATOR_BASE_URL", "http://127.0.0.1:9000")
	t.Setenv("TEXTGEN_GENERATOR_REQUESTS_PER_MINUTE", "0")
	t.Setenv("TEXTGEN_GENERATION_MAX_LENGTH", "300")
	t.Setenv("TEXTGEN_GENERATION_TEMPERATURE", "0.5")
	t.Setenv("TEXTGEN_STREAM_INTERVAL", "100ms")
	t.Setenv("TEXTGEN_UI_LOCALE", "en")
	t.Setenv("TEXTGEN_HEALTH_ENABLED", "false")
	t.Setenv("TEXTGEN_LOGGER_LEVEL", "debug")
	t.Setenv("TEXTGEN_LOGGER_OUTPUT", "/tmp/textgen.log")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	if cfg.Generator.BaseURL != "http://127.0.0.1:9000" {
		t.Errorf("BaseURL = %q", cfg.Generator.BaseURL)
	}
	if cfg.Generator.RequestsPerMinute != 0 {
		t.Errorf("RequestsPerMinute = %d, want 0", cfg.Generator.RequestsPerMinute)
	}
	if cfg.Generation.MaxLength != 300 {
		t.Errorf("MaxLength = %d, want 300", cfg.Generation.MaxLength)
	}
	if cfg.Generation.Temperature != 0.5 {
		t.Errorf("Temperature = %g, want 0.5", cfg.Generation.Temperature)
	}
	if cfg.Stream.Interval != 100*time.Millisecond {
		t.Errorf("Stream.Interval = %v, want 100ms", cfg.Stream.Interval)
	}
	if cfg.UI.Locale != "en" {
		t.Errorf("Locale = %q, want en", cfg.UI.Locale)
	}
	if cfg.Health.Enabled {
		t.Error("Health.Enabled should be false")
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, "debug")
	}
	if cfg.Logger.Output != "/tmp/textgen.log" {
		t.Errorf("Logger.Output = %q", cfg.Logger.Output)
	}
}

func TestEnvOverridesIgnoreUnparseable(t *testing.T) {
	t.Setenv("TEXTGEN_GENERATION_MAX_LENGTH", "lots")
	t.Setenv("TEXTGEN_STREAM_INTERVAL", "soon")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	if cfg.Generation.MaxLength != 200 {
		t.Errorf("MaxLength = %d, want default 200", cfg.Generation.MaxLength)
	}
	if cfg.Stream.Interval != 50*time.Millisecond {
		t.Errorf("Stream.Interval = %v, want default", cfg.Stream.Interval)
	}
}

func TestApplyEnvOverridesTracer(t *testing.T) {
	t.Setenv("TEXTGEN_TRACER_ENABLED", "true")
	t.Setenv("TEXTGEN_TRACER_EXPORTER", "stdout")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	if !cfg.Tracer.Enabled {
		t.Error("Tracer.Enabled should be true")
	}
	if cfg.Tracer.Exporter != "stdout" {
		t.Errorf("Tracer.Exporter = %q, want stdout", cfg.Tracer.Exporter)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := DefaultPath(); got != filepath.Join("/home/tester", ".textgen", "config.yaml") {
		t.Errorf("DefaultPath = %q", got)
	}
}

func TestLoadInsecurePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "insecure.yaml")
	if err := os.WriteFile(path, []byte("generation:\n  max_length: 100\n"), 0600); err != nil {
		t.Fatal(err)
	}
	// Chmod sidesteps the umask applied by WriteFile.
	if err := os.Chmod(path, 0666); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Error("expected error for insecure permissions")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("invalid: [yaml: bad"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidatePermissions(t *testing.T) {
	dir := t.TempDir()

	// 0600 should pass
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("test"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := validatePermissions(good); err != nil {
		t.Errorf("0600 should pass: %v", err)
	}

	// 0644 should pass
	readable := filepath.Join(dir, "readable.yaml")
	if err := os.WriteFile(readable, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := validatePermissions(readable); err != nil {
		t.Errorf("0644 should pass: %v", err)
	}

	// 0666 should fail (world-writable)
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("test"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(bad, 0666); err != nil {
		t.Fatal(err)
	}
	if err := validatePermissions(bad); err == nil {
		t.Error("0666 should fail")
	}
}

func TestValidatePermissionsStatError(t *testing.T) {
	err := validatePermissions("/tmp/nonexistent-file-for-stat-test-xyz.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}
