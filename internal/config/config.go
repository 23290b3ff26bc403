// =============================================================================
// Bank Payment Generator - Configuration Module
// =============================================================================
//
// This module loads the application configuration.
//
// SOURCES (later wins):
//   1. Built-in defaults
//   2. Main config file (config.yaml)
//   3. Environment variables prefixed with BANKPAY_
//
// Defaults are applied after the environment so that an empty variable does
// not blank out a setting.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"

	"github.com/flexerp/bankpay/pkg/utils"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "BANKPAY_"

// Source kinds.
const (
	SourceXLSX     = "xlsx"
	SourceCSV      = "csv"
	SourceYAML     = "yaml"
	SourcePostgres = "postgres"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// OutputDir is the directory where generated payment files are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR"`

	// ArchiveDir is the directory where delivered payment files are copied
	// when ArchiveOnSuccess is set. Copies go into a dated sub-directory.
	// Default: "./output_archive"
	ArchiveDir string `yaml:"archive_dir" env:"ARCHIVE_DIR"`

	// ArchiveOnSuccess copies every written file into ArchiveDir.
	// Default: false
	ArchiveOnSuccess bool `yaml:"archive_on_success" env:"ARCHIVE_ON_SUCCESS"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// FileNameFormat defines the output file name.
	// Placeholders:
	//   {uuid}      - The batch UUID
	//   {date}      - Creation date (YYYYMMDD)
	//   {timestamp} - Creation timestamp (YYYYMMDD_HHMMSS)
	//
	// Example: "bank_payment_{date}.txt"
	// Default: "bank_payment.txt"
	FileNameFormat string `yaml:"file_name_format" env:"FILE_NAME_FORMAT"`

	// Encoding is the character set of the written file.
	// Valid values: "UTF-8", "Windows-1252", "ISO-8859-1"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding" env:"ENCODING"`

	// Timezone is the IANA zone used for the creation date.
	// Default: "Local"
	Timezone string `yaml:"timezone" env:"TIMEZONE"`

	// RulesFile replaces the built-in field rule table when set.
	// Default: "" (built-in table)
	RulesFile string `yaml:"rules_file" env:"RULES_FILE"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// LogFormat selects the log output format.
	// Valid values: "text", "json"
	// Default: "text"
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	// =========================================================================
	// INVOICE SOURCE
	// =========================================================================

	// Source selects where invoices are loaded from.
	Source SourceConfig `yaml:"source" envPrefix:"SOURCE_"`
}

// SourceConfig describes the invoice source.
type SourceConfig struct {
	// Kind is one of "xlsx", "csv", "yaml", "postgres".
	// Default: "xlsx"
	Kind string `yaml:"kind" env:"KIND"`

	// Path is the invoice file for the file based kinds.
	Path string `yaml:"path" env:"PATH"`

	// Sheet is the worksheet of an xlsx source. Empty means the first sheet.
	Sheet string `yaml:"sheet" env:"SHEET"`

	// Delimiter is the field separator of a csv source.
	// Default: ","
	Delimiter string `yaml:"delimiter" env:"DELIMITER"`

	// DSN is the connection string of a postgres source.
	DSN string `yaml:"dsn" env:"DSN"`

	// View is the relation a postgres source reads from.
	// Default: "bank_payment_invoices"
	View string `yaml:"view" env:"VIEW"`
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// LoadMainConfig loads the main configuration file, applies environment
// overrides and defaults, then validates the result.
//
// When allowMissing is true a missing file is not an error and the
// configuration is built from defaults and the environment only.
func LoadMainConfig(configPath string, allowMissing bool) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case allowMissing && errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnvOverrides(&config); err != nil {
		return nil, err
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyEnvOverrides overwrites settings from BANKPAY_ variables.
func applyEnvOverrides(config *MainConfig) error {
	if err := env.Parse(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.ArchiveDir == "" {
		config.ArchiveDir = "./output_archive"
	}
	if config.FileNameFormat == "" {
		config.FileNameFormat = "bank_payment.txt"
	}
	if config.Encoding == "" {
		config.Encoding = utils.EncodingUTF8
	}
	if config.Timezone == "" {
		config.Timezone = "Local"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = LogFormatText
	}

	if config.Source.Kind == "" {
		config.Source.Kind = SourceXLSX
	}
	if config.Source.Delimiter == "" {
		config.Source.Delimiter = ","
	}
	if config.Source.View == "" {
		config.Source.View = "bank_payment_invoices"
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	if !utils.IsSupportedEncoding(config.Encoding) {
		return fmt.Errorf("unsupported encoding %q", config.Encoding)
	}

	if _, err := config.Location(); err != nil {
		return err
	}

	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log level %q", config.LogLevel)
	}

	switch config.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("unsupported log format %q", config.LogFormat)
	}

	if strings.ContainsAny(config.FileNameFormat, `/\`) {
		return fmt.Errorf("file name format %q must not contain a path separator", config.FileNameFormat)
	}

	switch config.Source.Kind {
	case SourceXLSX, SourceCSV, SourceYAML:
		if config.Source.Path == "" {
			return fmt.Errorf("source %s: path is required", config.Source.Kind)
		}
	case SourcePostgres:
		if config.Source.DSN == "" {
			return fmt.Errorf("source %s: dsn is required", config.Source.Kind)
		}
	default:
		return fmt.Errorf("unsupported source kind %q", config.Source.Kind)
	}

	switch config.Source.Delimiter {
	case "\\t", "tab", "TAB":
	default:
		if len([]rune(config.Source.Delimiter)) != 1 {
			return fmt.Errorf("source delimiter %q must be a single character", config.Source.Delimiter)
		}
	}

	return nil
}

// Location returns the time zone named by Timezone.
func (c *MainConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
