package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the hosted generation service.
const DefaultBaseURL = "https://urdu-trigram-api-production.up.railway.app"

// Config is the top-level application configuration.
type Config struct {
	Generator  GeneratorConfig  `yaml:"generator"`
	Generation GenerationConfig `yaml:"generation"`
	Stream     StreamConfig     `yaml:"stream"`
	UI         UIConfig         `yaml:"ui"`
	Health     HealthConfig     `yaml:"health"`
	Logger     LoggerConfig     `yaml:"logger"`
	Tracer     TracerConfig     `yaml:"tracer"`
}

// GeneratorConfig holds settings for the remote generation endpoint.
type GeneratorConfig struct {
	BaseURL     string        `yaml:"base_url"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	// RespTimeout bounds the wait for response headers. Zero means no limit:
	// a hung request stays pending until the user cancels it.
	RespTimeout       time.Duration        `yaml:"resp_timeout"`
	RequestsPerMinute int                  `yaml:"requests_per_minute"` // 0 = unlimited
	Burst             int                  `yaml:"burst"`
	CircuitBreaker    CircuitBreakerConfig `yaml:"circuit_breaker"`
	Pool              PoolConfig           `yaml:"pool"`
}

// CircuitBreakerConfig holds circuit breaker settings for the generator.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// PoolConfig holds HTTP connection pool settings.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// GenerationConfig holds the initial generation parameters.
type GenerationConfig struct {
	MaxLength   int     `yaml:"max_length"`
	Temperature float64 `yaml:"temperature"`
}

// StreamConfig holds simulated streaming settings.
type StreamConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Locale        string `yaml:"locale"` // "ur" or "en"
	AssistantName string `yaml:"assistant_name"`
	ExportDir     string `yaml:"export_dir"`
}

// HealthConfig holds settings for the periodic health probe.
type HealthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron expression or duration string
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Generator: GeneratorConfig{
			BaseURL:           DefaultBaseURL,
			ConnTimeout:       30 * time.Second,
			RequestsPerMinute: 30,
			Burst:             1,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
		},
		Generation: GenerationConfig{
			MaxLength:   200,
			Temperature: 0.8,
		},
		Stream: StreamConfig{
			Interval: 50 * time.Millisecond,
		},
		UI: UIConfig{
			Locale:        "ur",
			AssistantName: "Trigram",
			ExportDir:     ".",
		},
		Health: HealthConfig{
			Enabled:  true,
			Schedule: "30s",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// DefaultPath returns the config file location under $HOME/.textgen.
// Falls back to "./config.yaml" if $HOME cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".textgen", "config.yaml")
}

// Load reads a YAML config file and applies env var overrides. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	if err := validatePermissions(absPath); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps TEXTGEN_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TEXTGEN_GENERATOR_BASE_URL"); v != "" {
		cfg.Generator.BaseURL = v
	}
	if v := os.Getenv("TEXTGEN_GENERATOR_REQUESTS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Generator.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("TEXTGEN_GENERATION_MAX_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Generation.MaxLength = n
		}
	}
	if v := os.Getenv("TEXTGEN_GENERATION_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Generation.Temperature = f
		}
	}
	if v := os.Getenv("TEXTGEN_STREAM_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Stream.Interval = d
		}
	}
	if v := os.Getenv("TEXTGEN_UI_LOCALE"); v != "" {
		cfg.UI.Locale = v
	}
	if v := os.Getenv("TEXTGEN_HEALTH_ENABLED"); v != "" {
		cfg.Health.Enabled = v == "true"
	}
	if v := os.Getenv("TEXTGEN_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("TEXTGEN_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("TEXTGEN_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("TEXTGEN_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}

// validatePermissions checks the config file has restrictive permissions.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable)
	if mode&0o077 > 0o044 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
