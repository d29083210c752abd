// =============================================================================
// OC Consolidator - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Values come from three
// layers, applied in order:
//
//   1. Built-in defaults
//   2. The YAML file (config.yaml by default; optional)
//   3. Environment variables prefixed with OCC_ (a .env file is loaded first
//      when present)
//
// Nested sections map to OCC_<SECTION>_<KEY>, for example OCC_STORE_API_TOKEN,
// OCC_DB_DSN or OCC_LOG_LEVEL. Secrets such as the API token are read from
// the environment only.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "OCC"

// Import defaults.
const (
	DefaultHeaderScanRows = 20
	DefaultSampleSize     = 5
)

// Store targets.
const (
	TargetAPI = "api"
	TargetDB  = "db"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the full application configuration.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	CSV     CSVSettings   `yaml:"csv"`
	Store   StoreConfig   `yaml:"store"`
	DB      DBConfig      `yaml:"db"`
	Server  ServerConfig  `yaml:"server"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
	Reports ReportsConfig `yaml:"reports"`
}

// ImportConfig controls header detection and previews.
type ImportConfig struct {
	// HeaderScanRows is how many leading rows are searched for the header.
	// Default: 20
	HeaderScanRows int `yaml:"header_scan_rows" envconfig:"HEADER_SCAN_ROWS"`

	// SampleSize is how many records of each stage a preview shows.
	// Default: 5
	SampleSize int `yaml:"sample_size" envconfig:"SAMPLE_SIZE"`

	// Timeout bounds one whole import run. Zero disables the bound.
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// CSVSettings contains settings for delimited-text spreadsheets.
type CSVSettings struct {
	// Delimiter separates fields. Common values: ",", ";", "|", "\t".
	// Default: ","
	Delimiter string `yaml:"delimiter" envconfig:"DELIMITER"`

	// Encoding of the file: "UTF-8", "ISO-8859-1" or "Windows-1252".
	// Default: "UTF-8"
	Encoding string `yaml:"encoding" envconfig:"ENCODING"`
}

// StoreConfig selects and configures the order store.
type StoreConfig struct {
	// Target is "api" (remote order-management service) or "db" (local database).
	// Default: "api"
	Target string `yaml:"target" envconfig:"TARGET"`

	// BaseURL of the order-management API, e.g. https://erp.example.com/api/v1
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL"`

	// APIToken is sent as a bearer token. Environment only.
	APIToken string `yaml:"-" envconfig:"API_TOKEN"`

	// Timeout for each HTTP call.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// DBConfig configures the local order store database.
type DBConfig struct {
	// Driver is "postgres" or "sqlite".
	// Default: "sqlite"
	Driver string `yaml:"driver" envconfig:"DRIVER"`

	// DSN is the connection string or sqlite file path.
	// Default: "oc_consolidator.db"
	DSN string `yaml:"dsn" envconfig:"DSN"`

	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME"`

	// AutoMigrate runs pending migrations when the store opens.
	AutoMigrate bool `yaml:"auto_migrate" envconfig:"AUTO_MIGRATE"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Port to listen on.
	// Default: "8080"
	Port string `yaml:"port" envconfig:"PORT"`

	// MaxUploadBytes bounds the multipart upload size.
	// Default: 32 MiB
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
}

// RedisConfig configures the preview cache. Leave URL empty to disable it.
type RedisConfig struct {
	URL string `yaml:"url" envconfig:"URL"`

	// PreviewTTL is how long a consolidated preview can be committed.
	// Default: 30m
	PreviewTTL time.Duration `yaml:"preview_ttl" envconfig:"PREVIEW_TTL"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level: "debug", "info", "warn", "error". Default: "info"
	Level string `yaml:"level" envconfig:"LEVEL"`

	// Format: "json" or "console". Default: "json"
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// ReportsConfig controls the files written after an import.
type ReportsConfig struct {
	// OutputDir receives the text reports and rejected-row logs.
	// Default: "./reports"
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`

	// ArchiveDir receives the input spreadsheets after a successful run.
	// Default: "./input_archive"
	ArchiveDir string `yaml:"archive_dir" envconfig:"ARCHIVE_DIR"`

	// ArchiveInputs moves the inputs into ArchiveDir after a run without failures.
	ArchiveInputs bool `yaml:"archive_inputs" envconfig:"ARCHIVE_INPUTS"`

	// FileNameFormat supports {uuid} and {timestamp}.
	// Default: "{timestamp}_{uuid}"
	FileNameFormat string `yaml:"file_name_format" envconfig:"FILE_NAME_FORMAT"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load builds the configuration from defaults, the YAML file and the
// environment.
//
// PARAMETERS:
//   - configPath: Path to the YAML file. A missing file is not an error.
//
// RETURNS:
//   - A pointer to the validated Config.
//   - An error if the file cannot be parsed or the result is invalid.
func Load(configPath string) (*Config, error) {
	// A .env file is optional; a missing one is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults sets default values for any unset option.
func ApplyDefaults(cfg *Config) {
	if cfg.Import.HeaderScanRows <= 0 {
		cfg.Import.HeaderScanRows = DefaultHeaderScanRows
	}
	if cfg.Import.SampleSize <= 0 {
		cfg.Import.SampleSize = DefaultSampleSize
	}

	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ","
	}
	if cfg.CSV.Encoding == "" {
		cfg.CSV.Encoding = "UTF-8"
	}

	if cfg.Store.Target == "" {
		cfg.Store.Target = TargetAPI
	}
	if cfg.Store.Timeout <= 0 {
		cfg.Store.Timeout = 30 * time.Second
	}

	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "sqlite"
	}
	if cfg.DB.DSN == "" && cfg.DB.Driver == "sqlite" {
		cfg.DB.DSN = "oc_consolidator.db"
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = 32 << 20
	}

	if cfg.Redis.PreviewTTL <= 0 {
		cfg.Redis.PreviewTTL = 30 * time.Minute
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.Reports.OutputDir == "" {
		cfg.Reports.OutputDir = "./reports"
	}
	if cfg.Reports.ArchiveDir == "" {
		cfg.Reports.ArchiveDir = "./input_archive"
	}
	if cfg.Reports.FileNameFormat == "" {
		cfg.Reports.FileNameFormat = "{timestamp}_{uuid}"
	}
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs error

	switch c.Store.Target {
	case TargetAPI, TargetDB:
	default:
		errs = multierr.Append(errs, fmt.Errorf("store.target must be %q or %q, got %q", TargetAPI, TargetDB, c.Store.Target))
	}

	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		errs = multierr.Append(errs, fmt.Errorf("db.driver must be postgres or sqlite, got %q", c.DB.Driver))
	}
	if c.DB.Driver == "postgres" && c.DB.DSN == "" {
		errs = multierr.Append(errs, errors.New("db.dsn is required for postgres"))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = multierr.Append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}

	if c.Import.HeaderScanRows > 1000 {
		errs = multierr.Append(errs, errors.New("import.header_scan_rows must not exceed 1000"))
	}

	return errs
}

// RequireAPI reports whether the remote order store is usable.
func (c *Config) RequireAPI() error {
	if strings.TrimSpace(c.Store.BaseURL) == "" {
		return errors.New("store.base_url (OCC_STORE_BASE_URL) is required when store.target is api")
	}
	return nil
}
