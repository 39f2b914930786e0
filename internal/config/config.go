// Package config loads and validates the application configuration from
// environment variables and an optional YAML file. Environment values take
// precedence over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Report  ReportConfig  `yaml:"report" envconfig:"REPORT"`
	Fonts   FontsConfig   `yaml:"fonts" envconfig:"FONTS"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/duach.log"`
}

// ReportConfig contains report generation configuration. The coercion
// thresholds default to the canonical set: numeric acceptance 0.5, date
// detection 0.3, date acceptance 0.6.
type ReportConfig struct {
	Language string `yaml:"language" envconfig:"LANG" default:"he" validate:"oneof=he en"`
	Timezone string `yaml:"timezone" envconfig:"TZ" default:"Asia/Jerusalem"`

	NumericThreshold    float64 `yaml:"numeric_threshold" envconfig:"NUMERIC_THRESHOLD" default:"0.5" validate:"gt=0,lte=1"`
	DateDetectThreshold float64 `yaml:"date_detect_threshold" envconfig:"DATE_DETECT_THRESHOLD" default:"0.3" validate:"gt=0,lte=1"`
	DateAcceptThreshold float64 `yaml:"date_accept_threshold" envconfig:"DATE_ACCEPT_THRESHOLD" default:"0.6" validate:"gt=0,lte=1"`

	PreviewRows int `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" default:"5" validate:"gt=0"`
	TopValues   int `yaml:"top_values" envconfig:"TOP_VALUES" default:"5" validate:"gt=0"`
}

// FontsConfig contains font resolution configuration.
type FontsConfig struct {
	AssetsDir       string        `yaml:"assets_dir" envconfig:"ASSETS_DIR" default:"assets/fonts"`
	RegularOverride string        `yaml:"regular_override" envconfig:"REGULAR"`
	BoldOverride    string        `yaml:"bold_override" envconfig:"BOLD"`
	DownloadBaseURL string        `yaml:"download_base_url" envconfig:"DOWNLOAD_BASE_URL" default:"https://github.com/dejavu-fonts/dejavu-fonts/raw/master/ttf"`
	DownloadDir     string        `yaml:"download_dir" envconfig:"DOWNLOAD_DIR"`
	DownloadTimeout time.Duration `yaml:"download_timeout" envconfig:"DOWNLOAD_TIMEOUT" default:"20s"`
	DisableDownload bool          `yaml:"disable_download" envconfig:"DISABLE_DOWNLOAD"`
}

// PathsConfig contains file system paths configuration.
type PathsConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"reports"`
	ChartsDir string `yaml:"charts_dir" envconfig:"CHARTS_DIR" default:"charts"`
	TempDir   string `yaml:"temp_dir" envconfig:"TEMP_DIR"`
}

// Load loads configuration from environment variables and, if present, a
// YAML config file. Environment variables win over file values.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = *fileCfg
		}
	}

	if err := envconfig.Process("DUACH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration with all defaults applied and no
// environment or file input. Used by tests and library callers.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills zero-valued fields. envconfig only applies struct
// defaults when processing the environment, so a partially-filled YAML file
// still needs this pass.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "console"
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = "logs/duach.log"
	}
	if cfg.Report.Language == "" {
		cfg.Report.Language = "he"
	}
	if cfg.Report.Timezone == "" {
		cfg.Report.Timezone = "Asia/Jerusalem"
	}
	if cfg.Report.NumericThreshold == 0 {
		cfg.Report.NumericThreshold = 0.5
	}
	if cfg.Report.DateDetectThreshold == 0 {
		cfg.Report.DateDetectThreshold = 0.3
	}
	if cfg.Report.DateAcceptThreshold == 0 {
		cfg.Report.DateAcceptThreshold = 0.6
	}
	if cfg.Report.PreviewRows == 0 {
		cfg.Report.PreviewRows = 5
	}
	if cfg.Report.TopValues == 0 {
		cfg.Report.TopValues = 5
	}
	if cfg.Fonts.AssetsDir == "" {
		cfg.Fonts.AssetsDir = "assets/fonts"
	}
	if cfg.Fonts.DownloadBaseURL == "" {
		cfg.Fonts.DownloadBaseURL = "https://github.com/dejavu-fonts/dejavu-fonts/raw/master/ttf"
	}
	if cfg.Fonts.DownloadTimeout == 0 {
		cfg.Fonts.DownloadTimeout = 20 * time.Second
	}
	if cfg.Paths.OutputDir == "" {
		cfg.Paths.OutputDir = "reports"
	}
	if cfg.Paths.ChartsDir == "" {
		cfg.Paths.ChartsDir = "charts"
	}
	if cfg.Paths.TempDir == "" {
		cfg.Paths.TempDir = os.TempDir()
	}
	if cfg.Fonts.DownloadDir == "" {
		cfg.Fonts.DownloadDir = filepath.Join(cfg.Paths.TempDir, "duach-fonts")
	}
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Report.DateDetectThreshold > c.Report.DateAcceptThreshold {
		return fmt.Errorf("date detect threshold %.2f must not exceed accept threshold %.2f",
			c.Report.DateDetectThreshold, c.Report.DateAcceptThreshold)
	}
	return nil
}
