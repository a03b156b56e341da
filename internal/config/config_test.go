package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMainConfigDefaults(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.NoError(t, err)

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "./sources", cfg.SourcesDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, "abort", cfg.Formats.DOM80.UnknownRecords)
	assert.Equal(t, "skip", cfg.Formats.BVB.UnknownRecords)
	assert.True(t, cfg.Formats.DOM80.ShouldValidateTotals())
}

func TestLoadMainConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
input_dir: /data/in
log_level: debug
max_concurrency: 2
originator:
  bank_code: 310
  name: SPORTCLUB
formats:
  bvb:
    unknown_records: abort
    validate_totals: false
`)
	envPath := writeFile(t, dir, "test.env", "BATCHCONV_ORIGINATOR_NAME=KAAS & CO\n")
	t.Setenv(EnvMaxConcurrency, "8")
	t.Setenv(EnvOriginatorName, "")

	cfg, err := LoadMainConfig(path, envPath)
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.InputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.Equal(t, 310, cfg.Originator.BankCode)
	// godotenv does not override variables already present in the environment
	assert.Equal(t, "SPORTCLUB", cfg.Originator.Name)

	bvb, err := cfg.Format("BVB")
	require.NoError(t, err)
	assert.Equal(t, "abort", bvb.UnknownRecords)
	assert.False(t, bvb.ShouldValidateTotals())

	_, err = cfg.Format("sepa")
	assert.Error(t, err)
}

func TestLoadMainConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"log level", "log_level: loud\n"},
		{"policy", "formats:\n  dom80:\n    unknown_records: ignore\n"},
		{"bank code", "originator:\n  bank_code: 1234\n"},
		{"yaml", "input_dir: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", tt.content)
			_, err := LoadMainConfig(path, "")
			assert.Error(t, err)
		})
	}

	t.Run("env", func(t *testing.T) {
		t.Setenv(EnvMaxConcurrency, "many")
		_, err := LoadMainConfig(filepath.Join(t.TempDir(), "none.yaml"), "")
		assert.Error(t, err)
	})

	t.Run("missing env file", func(t *testing.T) {
		_, err := LoadMainConfig("", filepath.Join(t.TempDir(), "none.env"))
		assert.Error(t, err)
	})
}

func TestLoadSourceConfigs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lidgeld.yaml", `
source_name: Lidgelden
format: DOM80
file_matching_patterns: ["lidgeld_*.csv"]
columns:
  mandate: Mandaat
  amount: Bedrag
  name: Naam
`)
	writeFile(t, dir, "terug.yml", `
source_name: Terugbetalingen
source_code: TB
format: bvb
file_matching_patterns: ["terug*.xlsx", "terug*.csv"]
csv_settings:
  delimiter: ","
  header_rows: 2
columns:
  account: Rekening
  amount: Bedrag
  name: Naam
`)
	writeFile(t, dir, "notes.txt", "ignored")

	sources, err := LoadSourceConfigs(dir)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	dom := sources[0]
	assert.Equal(t, FormatDOM80, dom.Format)
	assert.Equal(t, "lidgeld", dom.SourceCode)
	assert.Equal(t, ";", dom.CSVSettings.Delimiter)
	assert.Equal(t, 2, dom.CSVSettings.DataStartRow)
	assert.Equal(t, "02/01/2006", dom.DateFormat)

	bvb := sources[1]
	assert.Equal(t, "TB", bvb.SourceCode)
	assert.Equal(t, 3, bvb.CSVSettings.DataStartRow)
	assert.Equal(t, "invordering", bvb.DefaultKind)

	found, err := FindSource(sources, "/in/terugbetaling_mei.xlsx")
	require.NoError(t, err)
	assert.Same(t, bvb, found)

	_, err = FindSource(sources, "lidgeld_mei.xlsx")
	assert.Error(t, err)
}

func TestLoadSourceConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"format", "format: sepa\ncolumns: {amount: A, name: N}\n", "format"},
		{"amount", "format: bvb\ncolumns: {account: R, name: N}\n", "columns.amount"},
		{"mandate", "format: dom80\ncolumns: {amount: A, name: N}\n", "columns.mandate"},
		{"account", "format: bvb\ncolumns: {amount: A, name: N}\n", "columns.account"},
		{"rows", "format: bvb\ncolumns: {account: R, amount: A, name: N}\ncsv_settings: {header_rows: 2, data_start_row: 2}\n", "data_start_row"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "p.yaml", tt.content)
			_, err := LoadSourceConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
