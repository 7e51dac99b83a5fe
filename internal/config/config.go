// =============================================================================
// BRO.AI - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Settings come from three
// layers, later layers winning:
//
//   1. Built-in defaults (applyDefaults)
//   2. The YAML config file (config.yaml), when present
//   3. Environment variables, optionally read from a .env file
//
// ENVIRONMENT OVERRIDES:
//   BROAI_API_URL     - Base URL of the BRO.AI API
//   BROAI_API_TOKEN   - Bearer token sent with every request
//   BROAI_USE_MOCKS   - "true" to use the in-process mock backend
//   BROAI_LOG_LEVEL   - debug, info, warn, error
//   BROAI_TIMEOUT     - Request timeout as a Go duration ("15s")
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	// =========================================================================
	// API SETTINGS
	// =========================================================================

	// APIURL is the base URL of the BRO.AI API.
	// Required unless UseMocks is set.
	APIURL string `yaml:"api_url"`

	// APIToken is sent as "Authorization: Bearer <token>" when set.
	APIToken string `yaml:"api_token"`

	// UseMocks switches every service to the in-memory mock backend.
	// Default: false
	UseMocks bool `yaml:"use_mocks"`

	// RequestTimeout is the hard deadline for a single API call.
	// Default: 15s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MockLatency is the artificial delay added by the mock backend.
	// Default: 0
	MockLatency time.Duration `yaml:"mock_latency"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is where error logs and import summaries are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ListenAddr is the address "broai serve" binds to.
	// Default: ":8080"
	ListenAddr string `yaml:"listen_addr"`

	// =========================================================================
	// DOMAIN SETTINGS
	// =========================================================================

	// TargetCMVPercent is the CMV goal used for minimum price suggestions.
	// Must be strictly between 0 and 100.
	// Default: 35
	TargetCMVPercent float64 `yaml:"target_cmv_percent"`

	// PreviewRows is how many rows the CLI prints when previewing a source.
	// Default: 10
	PreviewRows int `yaml:"preview_rows"`

	// CSV contains settings for parsing local CSV sources.
	CSV CSVSettings `yaml:"csv"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), ";" (semicolon), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows in the CSV file.
	// When greater than 1, the header rows are joined per column.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the row number where the actual data begins.
	// Row numbering starts at 1.
	// Default: 2 (assuming 1 header row)
	DataStartRow int `yaml:"data_start_row"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load loads the configuration.
//
// PARAMETERS:
//   - configPath: The path to the YAML configuration file. A missing file is
//     not an error; defaults and environment variables are used instead.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file exists but cannot be parsed, or if the resulting
//     configuration is invalid.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults and environment only.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// A .env file is optional.
	_ = godotenv.Load()

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is configured, with
// the mock backend enabled.
func Default() *Config {
	cfg := &Config{UseMocks: true}
	applyDefaults(cfg)
	return cfg
}

// applyEnv overlays BROAI_* environment variables onto the configuration.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("BROAI_API_URL"); ok && v != "" {
		cfg.APIURL = v
	}
	if v, ok := lookup("BROAI_API_TOKEN"); ok && v != "" {
		cfg.APIToken = v
	}
	if v, ok := lookup("BROAI_USE_MOCKS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BROAI_USE_MOCKS: %w", err)
		}
		cfg.UseMocks = b
	}
	if v, ok := lookup("BROAI_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("BROAI_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BROAI_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.TargetCMVPercent == 0 {
		cfg.TargetCMVPercent = 35
	}
	if cfg.PreviewRows == 0 {
		cfg.PreviewRows = 10
	}

	// CSV settings defaults.
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ","
	}
	if cfg.CSV.HeaderRows == 0 {
		cfg.CSV.HeaderRows = 1
	}
	if cfg.CSV.DataStartRow == 0 {
		cfg.CSV.DataStartRow = cfg.CSV.HeaderRows + 1
	}
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	var problems []string

	if !c.UseMocks && strings.TrimSpace(c.APIURL) == "" {
		problems = append(problems, "api_url is required unless use_mocks is set")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "request_timeout must be positive")
	}
	if c.MockLatency < 0 {
		problems = append(problems, "mock_latency must not be negative")
	}
	if c.TargetCMVPercent <= 0 || c.TargetCMVPercent >= 100 {
		problems = append(problems, "target_cmv_percent must be between 0 and 100")
	}
	if c.PreviewRows < 0 {
		problems = append(problems, "preview_rows must not be negative")
	}
	if len([]rune(c.CSV.Delimiter)) != 1 {
		problems = append(problems, "csv.delimiter must be a single character")
	}
	if c.CSV.HeaderRows < 1 {
		problems = append(problems, "csv.header_rows must be at least 1")
	}
	if c.CSV.DataStartRow <= c.CSV.HeaderRows {
		problems = append(problems, "csv.data_start_row must come after the header rows")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
