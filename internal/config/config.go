package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. MACRO_SERVER_PORT.
const EnvPrefix = "MACRO"

// FileEnv names the variable pointing at an explicit YAML config file.
const FileEnv = "MACRO_CONFIG"

// DateLayout is the layout of the configured default date range.
const DateLayout = "2006-01-02"

// Source kinds
const (
	SourceFile   = "file"
	SourceSheets = "sheets"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Charts    ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DataConfig locates the workbook and the files offered for download.
type DataConfig struct {
	Source          string `yaml:"source" envconfig:"SOURCE"`
	WorkbookPath    string `yaml:"workbook_path" envconfig:"WORKBOOK_PATH"`
	ScriptPath      string `yaml:"script_path" envconfig:"SCRIPT_PATH"`
	WorkbookName    string `yaml:"workbook_name" envconfig:"WORKBOOK_NAME"`
	ScriptName      string `yaml:"script_name" envconfig:"SCRIPT_NAME"`
	SpreadsheetID   string `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	CatalogFile     string `yaml:"catalog_file" envconfig:"CATALOG_FILE"`
	ExportDir       string `yaml:"export_dir" envconfig:"EXPORT_DIR"`
	DefaultStart    string `yaml:"default_start" envconfig:"DEFAULT_START"`
	DefaultEnd      string `yaml:"default_end" envconfig:"DEFAULT_END"`
	DefaultSheet    string `yaml:"default_sheet" envconfig:"DEFAULT_SHEET"`
}

// Start returns the parsed default range start.
func (d DataConfig) Start() time.Time {
	t, _ := time.Parse(DateLayout, d.DefaultStart)
	return t
}

// End returns the parsed default range end.
func (d DataConfig) End() time.Time {
	t, _ := time.Parse(DateLayout, d.DefaultEnd)
	return t
}

// ChartsConfig sizes rendered PNGs.
type ChartsConfig struct {
	Width     int    `yaml:"width" envconfig:"WIDTH"`
	Height    int    `yaml:"height" envconfig:"HEIGHT"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	Workers   int    `yaml:"workers" envconfig:"WORKERS"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in increasing order of precedence. A .env file in the
// working directory is read into the environment first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path := getConfigFilePath(); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", path, err)
		}
	}

	// Only variables that are set override; defaults already live in cfg.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current values.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server request timeout must be positive")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format: %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file path is required for output %q", c.Logging.Output)
	}

	switch c.Data.Source {
	case SourceFile:
		if c.Data.WorkbookPath == "" {
			return fmt.Errorf("data workbook path is required")
		}
	case SourceSheets:
		if c.Data.SpreadsheetID == "" {
			return fmt.Errorf("data spreadsheet id is required for source %q", SourceSheets)
		}
	default:
		return fmt.Errorf("invalid data source: %q", c.Data.Source)
	}

	start, err := time.Parse(DateLayout, c.Data.DefaultStart)
	if err != nil {
		return fmt.Errorf("invalid default start %q: %w", c.Data.DefaultStart, err)
	}
	end, err := time.Parse(DateLayout, c.Data.DefaultEnd)
	if err != nil {
		return fmt.Errorf("invalid default end %q: %w", c.Data.DefaultEnd, err)
	}
	if end.Before(start) {
		return fmt.Errorf("default end %s is before default start %s", c.Data.DefaultEnd, c.Data.DefaultStart)
	}

	if c.Charts.Width <= 0 || c.Charts.Height <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", c.Charts.Width, c.Charts.Height)
	}
	if c.Charts.Workers <= 0 {
		return fmt.Errorf("chart workers must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(FileEnv); path != "" {
		return path
	}

	locations := []string{
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

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/macrodash.log",
		},
		Data: DataConfig{
			Source:       SourceFile,
			WorkbookPath: "Economic_Indicators.xlsx",
			ScriptPath:   "Data_Visualization.py",
			WorkbookName: "Economic_Indicators.xlsx",
			ScriptName:   "Data_Visualization.py",
			ExportDir:    "exports",
			DefaultStart: "2017-01-01",
			DefaultEnd:   "2024-12-31",
			DefaultSheet: "Monthly",
		},
		Charts: ChartsConfig{
			Width:     1000,
			Height:    500,
			OutputDir: "charts",
			Workers:   4,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}
