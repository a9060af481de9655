package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "FINVIS"

// Config represents the complete application configuration. Environment
// keys are derived from field names (FINVIS_SERVER_PORT); explicit
// envconfig tags are avoided since envconfig also falls back to the bare
// tag name, and PATH or HOST are nearly always set.
type Config struct {
	Server    ServerConfig    `yaml:"server" split_words:"true"`
	Security  SecurityConfig  `yaml:"security" split_words:"true"`
	Logging   LoggingConfig   `yaml:"logging" split_words:"true"`
	Workbook  WorkbookConfig  `yaml:"workbook" split_words:"true"`
	Viewer    ViewerConfig    `yaml:"viewer" split_words:"true"`
	Telemetry TelemetryConfig `yaml:"telemetry" split_words:"true"`
	Schema    Schema          `yaml:"schema" ignored:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" split_words:"true" validate:"required"`
	Port            int           `yaml:"port" split_words:"true" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true" validate:"gt=0"`
}

// Address returns host:port for the HTTP listener
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// URL returns the base URL the dashboard is served on
func (s ServerConfig) URL() string {
	return fmt.Sprintf("http://%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" split_words:"true"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" split_words:"true"`
	RPS     float64 `yaml:"rps" split_words:"true" validate:"gte=0"`
	Burst   int     `yaml:"burst" split_words:"true" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" split_words:"true" validate:"oneof=json text"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// WorkbookConfig points at the spreadsheet to load
type WorkbookConfig struct {
	Path string `yaml:"path" split_words:"true" validate:"required"`
	// Watch reloads the dashboard when the file changes on disk
	Watch         bool          `yaml:"watch" split_words:"true"`
	WatchInterval time.Duration `yaml:"watch_interval" split_words:"true" validate:"gt=0"`
}

// Viewer modes
const (
	ViewerBrowser = "browser"
	ViewerChrome  = "chrome"
	ViewerNone    = "none"
)

// ViewerConfig selects how the dashboard is displayed
type ViewerConfig struct {
	Mode         string        `yaml:"mode" split_words:"true" validate:"oneof=browser chrome none"`
	ReadyWait    time.Duration `yaml:"ready_wait" split_words:"true" validate:"gt=0"`
	ChromePath   string        `yaml:"chrome_path" split_words:"true"`
	WindowWidth  int           `yaml:"window_width" split_words:"true" validate:"gte=0"`
	WindowHeight int           `yaml:"window_height" split_words:"true" validate:"gte=0"`
}

// TelemetryConfig controls OpenTelemetry exporters
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" split_words:"true" validate:"oneof=stdout none"`
	EnableMetrics bool   `yaml:"enable_metrics" split_words:"true"`
}

// Load builds the configuration from defaults, an optional YAML file and
// FINVIS_* environment variables, in increasing order of precedence.
// An empty configFile falls back to the first config.yaml found in the
// usual locations; no file at all is not an error.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields are only overwritten for variables that are actually set
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// findConfigFile returns the path of the first config file found
func findConfigFile() string {
	locations := []string{
		"finvis.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Validate checks struct constraints and the dashboard schema
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file path is required for output %q", c.Logging.Output)
	}
	return c.Schema.Validate()
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            5006,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: false,
				RPS:     50,
				Burst:   100,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/finvis.log",
		},
		Workbook: WorkbookConfig{
			Path:          "Intel_Financial_Data.xlsx",
			WatchInterval: 2 * time.Second,
		},
		Viewer: ViewerConfig{
			Mode:         ViewerBrowser,
			ReadyWait:    5 * time.Second,
			WindowWidth:  1280,
			WindowHeight: 900,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
			EnableMetrics: true,
		},
		Schema: DefaultSchema(),
	}
}
