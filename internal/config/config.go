// =============================================================================
// Belgian Batch Converter - Configuration Module
// =============================================================================
//
// This module loads the application configuration and the source profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): directories, logging, originator data and
//      per-format reading policies
//   2. Source Profiles (sources/*.yaml): one per upstream export, describing
//      how its rows become DOM80 collections or BVB orders
//   3. Environment (.env and process environment): overrides for the
//      settings that differ per machine
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported batch formats.
const (
	FormatDOM80 = "dom80"
	FormatBVB   = "bvb"
)

// Environment variables that override the main configuration.
const (
	EnvInputDir          = "BATCHCONV_INPUT_DIR"
	EnvOutputDir         = "BATCHCONV_OUTPUT_DIR"
	EnvLogLevel          = "BATCHCONV_LOG_LEVEL"
	EnvOriginatorAccount = "BATCHCONV_ORIGINATOR_ACCOUNT"
	EnvOriginatorName    = "BATCHCONV_ORIGINATOR_NAME"
	EnvMaxConcurrency    = "BATCHCONV_MAX_CONCURRENCY"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for transaction exports (.csv, .xlsx).
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated batch files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives inputs once they converted successfully.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir keeps a copy of every generated batch file.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// SourcesDir holds the source profiles.
	// Default: "./sources"
	SourcesDir string `yaml:"sources_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile, when set, receives the per-run error log.
	// Default: "./logs/batchconv.log"
	LogFile string `yaml:"log_file"`

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat names generated files. Placeholders:
	//   {uuid}      - a random UUID
	//   {timestamp} - current time (YYYYMMDD_HHMMSS)
	//   {format}    - "dom80" or "bvb"
	//   {source}    - source profile code
	// The extension is appended by the writer.
	// Default: "{format}_{timestamp}_{uuid}"
	OutputNameFormat string `yaml:"output_name_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency bounds the number of files converted at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps converting other files after one fails.
	ContinueOnError bool `yaml:"continue_on_error"`

	// =========================================================================
	// BATCH SETTINGS
	// =========================================================================

	// Originator is the party named in every header.
	Originator Originator `yaml:"originator"`

	// Formats holds the reading policy of each batch format.
	Formats Formats `yaml:"formats"`
}

// Originator describes the creditor (DOM80) or ordering party (BVB).
type Originator struct {
	// BankCode is the three-digit instellingsnummer.
	BankCode int `yaml:"bank_code"`

	// Account is the originator's account number; non-digits are ignored.
	Account string `yaml:"account"`

	// CreditorID is the DOM80 schuldeiser identification (11 digits).
	CreditorID string `yaml:"creditor_id"`

	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	City    string `yaml:"city"`
}

// Formats holds per-format settings.
type Formats struct {
	DOM80 FormatSettings `yaml:"dom80"`
	BVB   FormatSettings `yaml:"bvb"`
}

// FormatSettings controls how batch files of one format are read.
type FormatSettings struct {
	// UnknownRecords is "abort" or "skip".
	// Default: "abort" for DOM80, "skip" for BVB.
	UnknownRecords string `yaml:"unknown_records"`

	// ValidateTotals recomputes trailer totals when reading.
	// Default: true
	ValidateTotals *bool `yaml:"validate_totals"`
}

// ShouldValidateTotals reports the effective ValidateTotals setting.
func (f FormatSettings) ShouldValidateTotals() bool {
	return f.ValidateTotals == nil || *f.ValidateTotals
}

// Format returns the settings of the named format.
func (c *MainConfig) Format(name string) (FormatSettings, error) {
	switch strings.ToLower(name) {
	case FormatDOM80:
		return c.Formats.DOM80, nil
	case FormatBVB:
		return c.Formats.BVB, nil
	default:
		return FormatSettings{}, fmt.Errorf("unknown batch format %q (want %s or %s)", name, FormatDOM80, FormatBVB)
	}
}

// =============================================================================
// SOURCE PROFILE STRUCTURE
// =============================================================================

// SourceConfig describes one upstream export: which files it covers, how
// to read them and how their columns map onto batch transactions.
type SourceConfig struct {
	// SourceName is used in logs and error messages.
	SourceName string `yaml:"source_name"`

	// SourceCode is a short code usable in output names.
	SourceCode string `yaml:"source_code"`

	// Format is the batch format this source produces: "dom80" or "bvb".
	Format string `yaml:"format"`

	// FileMatchingPatterns are glob patterns matched against input file
	// names. The first profile with a matching pattern is used.
	// Examples:
	//   - "lidgeld_*.csv"
	//   - "terugbetalingen_*.xlsx"
	FileMatchingPatterns []string `yaml:"file_matching_patterns"`

	// CSVSettings applies to .csv inputs.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// Sheet is the worksheet read from .xlsx inputs; empty means the first.
	Sheet string `yaml:"sheet"`

	// Columns maps transaction fields to input column headers.
	Columns ColumnMapping `yaml:"columns"`

	// DateFormat is the Go layout of date columns.
	// Default: "02/01/2006"
	DateFormat string `yaml:"date_format"`

	// DefaultKind is the BVB aard used when no kind column is mapped.
	// Default: "invordering"
	DefaultKind string `yaml:"default_kind"`

	// Reference is written in the header's referentie slot.
	Reference string `yaml:"reference"`

	// TransformationRules are applied to raw column values before mapping.
	TransformationRules []TransformationRule `yaml:"transformation_rules"`
}

// ColumnMapping names the input column holding each transaction field.
// Unused columns are left empty.
type ColumnMapping struct {
	Account       string `yaml:"account"`
	Mandate       string `yaml:"mandate"`
	Amount        string `yaml:"amount"`
	Name          string `yaml:"name"`
	Reference     string `yaml:"reference"`
	Communication string `yaml:"communication"`
	Address       string `yaml:"address"`
	City          string `yaml:"city"`
	ValueDate     string `yaml:"value_date"`
	Kind          string `yaml:"kind"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter separates fields. Belgian exports commonly use ";".
	// Default: ";"
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows; their values are joined
	// per column to form the column name.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the 1-based row where data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`

	// Encoding is informational; inputs are read as UTF-8.
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`

	// QuoteChar must be '"' or empty; encoding/csv supports no other.
	QuoteChar string `yaml:"quote_char"`
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule defines the transformations of one input column.
type TransformationRule struct {
	// Field is the input column header.
	Field string `yaml:"field"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is one of:
	//   - "trim", "uppercase", "lowercase"
	//   - "strip_non_digits"    : keep only 0-9 (account numbers)
	//   - "prepend_string"      : Value is prepended
	//   - "append_string"       : Value is appended
	//   - "pad_zeros_to_length" : Value is the target length
	//   - "ensure_length"       : truncate or space-pad to Value characters
	//   - "replace"             : replace Find with Value
	//   - "regex_replace"       : replace pattern Find with Value
	//   - "lookup"              : replace through LookupTable
	//   - "default"             : use Value when the input is empty
	Type string `yaml:"type"`

	Value string `yaml:"value"`

	Find string `yaml:"find,omitempty"`

	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file, then applies
// environment overrides and defaults.
//
// PARAMETERS:
//   - configPath: path of the YAML file. A missing file is not an error; the
//     defaults and environment are used instead.
//   - envPath: optional .env file. When empty, ./.env is loaded if present.
//
// RETURNS:
//   - The effective configuration.
//   - An error if a file cannot be parsed or the configuration is invalid.
func LoadMainConfig(configPath, envPath string) (*MainConfig, error) {
	if err := loadEnv(envPath); err != nil {
		return nil, err
	}

	var config MainConfig
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
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

func loadEnv(envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
		return nil
	}
	// ./.env is optional
	_ = godotenv.Load()
	return nil
}

// applyEnvOverrides copies set environment variables over file values.
func applyEnvOverrides(config *MainConfig) error {
	if v := os.Getenv(EnvInputDir); v != "" {
		config.InputDir = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		config.OutputDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv(EnvOriginatorAccount); v != "" {
		config.Originator.Account = v
	}
	if v := os.Getenv(EnvOriginatorName); v != "" {
		config.Originator.Name = v
	}
	if v := os.Getenv(EnvMaxConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxConcurrency, err)
		}
		config.MaxConcurrency = n
	}
	return nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.SourcesDir == "" {
		config.SourcesDir = "./sources"
	}
	if config.LogFile == "" {
		config.LogFile = "./logs/batchconv.log"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{format}_{timestamp}_{uuid}"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Formats.DOM80.UnknownRecords == "" {
		config.Formats.DOM80.UnknownRecords = "abort"
	}
	if config.Formats.BVB.UnknownRecords == "" {
		config.Formats.BVB.UnknownRecords = "skip"
	}
}

// validateMainConfig checks option values. Directories are created by the
// file manager, not here.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q: want debug, info, warn or error", config.LogLevel)
	}

	for name, f := range map[string]FormatSettings{FormatDOM80: config.Formats.DOM80, FormatBVB: config.Formats.BVB} {
		switch strings.ToLower(f.UnknownRecords) {
		case "abort", "skip":
		default:
			return fmt.Errorf("formats.%s.unknown_records %q: want abort or skip", name, f.UnknownRecords)
		}
	}

	if config.Originator.BankCode < 0 || config.Originator.BankCode > 999 {
		return fmt.Errorf("originator.bank_code %d: want three digits", config.Originator.BankCode)
	}
	return nil
}

// LoadSourceConfigs loads every source profile in a directory.
//
// PARAMETERS:
//   - sourcesDir: the directory holding *.yaml / *.yml profiles.
//
// RETURNS:
//   - The profiles, in file name order.
//   - An error if any file cannot be read, parsed or validated.
func LoadSourceConfigs(sourcesDir string) ([]*SourceConfig, error) {
	files, err := filepath.Glob(filepath.Join(sourcesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list source profiles: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(sourcesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list source profiles: %w", err)
	}
	files = append(files, ymlFiles...)

	configs := make([]*SourceConfig, 0, len(files))
	for _, file := range files {
		config, err := LoadSourceConfig(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		if config.SourceCode == "" {
			config.SourceCode = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		}
		configs = append(configs, config)
	}
	return configs, nil
}

// LoadSourceConfig loads a single source profile.
func LoadSourceConfig(filePath string) (*SourceConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config SourceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	applySourceConfigDefaults(&config)
	if err := validateSourceConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// applySourceConfigDefaults sets default values for a source profile.
func applySourceConfigDefaults(config *SourceConfig) {
	config.Format = strings.ToLower(strings.TrimSpace(config.Format))

	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ";"
	}
	if config.CSVSettings.HeaderRows == 0 {
		config.CSVSettings.HeaderRows = 1
	}
	if config.CSVSettings.DataStartRow == 0 {
		config.CSVSettings.DataStartRow = config.CSVSettings.HeaderRows + 1
	}
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = "UTF-8"
	}
	if config.CSVSettings.QuoteChar == "" {
		config.CSVSettings.QuoteChar = "\""
	}
	if config.DateFormat == "" {
		config.DateFormat = "02/01/2006"
	}
	if config.DefaultKind == "" {
		config.DefaultKind = "invordering"
	}
}

func validateSourceConfig(config *SourceConfig) error {
	if config.Format != FormatDOM80 && config.Format != FormatBVB {
		return fmt.Errorf("format %q: want %s or %s", config.Format, FormatDOM80, FormatBVB)
	}
	if config.Columns.Amount == "" {
		return errors.New("columns.amount is required")
	}
	if config.Columns.Name == "" {
		return errors.New("columns.name is required")
	}
	if config.Format == FormatDOM80 && config.Columns.Mandate == "" {
		return errors.New("columns.mandate is required for dom80")
	}
	if config.Format == FormatBVB && config.Columns.Account == "" {
		return errors.New("columns.account is required for bvb")
	}
	if config.CSVSettings.DataStartRow <= config.CSVSettings.HeaderRows {
		return fmt.Errorf("csv_settings.data_start_row %d must follow the %d header rows",
			config.CSVSettings.DataStartRow, config.CSVSettings.HeaderRows)
	}
	return nil
}

// Matches reports whether a file name matches one of the profile's patterns.
func (c *SourceConfig) Matches(fileName string) bool {
	base := filepath.Base(fileName)
	for _, pattern := range c.FileMatchingPatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// FindSource returns the first profile matching fileName.
func FindSource(sources []*SourceConfig, fileName string) (*SourceConfig, error) {
	for _, s := range sources {
		if s.Matches(fileName) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no source profile matches %s", filepath.Base(fileName))
}
