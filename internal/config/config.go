package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Display   DisplayConfig   `yaml:"display" envconfig:"DISPLAY"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" validate:"min=1024"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	// RequestTimeout bounds a single pipeline run behind an HTTP request.
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	MaxUploadMB    int           `yaml:"max_upload_mb" envconfig:"MAX_UPLOAD_MB" validate:"min=1,max=512"`
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
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"min=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// ReportConfig controls the generated chart and document.
type ReportConfig struct {
	Title             string  `yaml:"title" envconfig:"TITLE" validate:"required"`
	PreparedBy        string  `yaml:"prepared_by" envconfig:"PREPARED_BY" validate:"required"`
	ChartWidthInches  float64 `yaml:"chart_width_inches" envconfig:"CHART_WIDTH_INCHES" validate:"gt=0,lte=40"`
	ChartHeightInches float64 `yaml:"chart_height_inches" envconfig:"CHART_HEIGHT_INCHES" validate:"gt=0,lte=40"`
	ChartDPI          int     `yaml:"chart_dpi" envconfig:"CHART_DPI" validate:"min=50,max=600"`
	// ImageWidthInches is the width of the chart inside the document.
	ImageWidthInches float64 `yaml:"image_width_inches" envconfig:"IMAGE_WIDTH_INCHES" validate:"gt=0,lte=7.5"`
	// TimeZone is used for text timestamps without an explicit offset and for the generation date.
	TimeZone string `yaml:"time_zone" envconfig:"TIME_ZONE" validate:"required,timezone"`
}

// DisplayConfig controls the on-screen preview.
type DisplayConfig struct {
	PreviewRows int `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" validate:"min=0,max=1000"`
	// MaxColumns limits preview columns; 0 shows all of them.
	MaxColumns int `yaml:"max_columns" envconfig:"MAX_COLUMNS" validate:"min=0"`
}

// TelemetryConfig contains OpenTelemetry switches
type TelemetryConfig struct {
	EnableMetrics bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing bool   `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	Environment   string `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Load loads configuration from .env, the optional config file and environment variables.
// Precedence, lowest first: defaults, config file, environment.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep their value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Location resolves the configured report time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Report.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MaxUploadBytes returns the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// validate validates the configuration
func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified when CORS is enabled")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
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
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  45 * time.Second,
			MaxUploadMB:     DefaultMaxUploadMB,
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
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Report: ReportConfig{
			Title:             DefaultReportTitle,
			PreparedBy:        DefaultPreparedBy,
			ChartWidthInches:  12,
			ChartHeightInches: 8,
			ChartDPI:          100,
			ImageWidthInches:  6,
			TimeZone:          "UTC",
		},
		Display: DisplayConfig{
			PreviewRows: DefaultPreviewRows,
			MaxColumns:  0,
		},
		Telemetry: TelemetryConfig{
			EnableMetrics: true,
			EnableTracing: false,
			TraceExporter: "none",
			Environment:   "development",
		},
	}
}
