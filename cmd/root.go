// =============================================================================
// Belgian Batch Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (batchconv)
//   ├── writeCmd    (batchconv write)
//   ├── readCmd     (batchconv read FILE)
//   ├── validateCmd (batchconv validate FILE)
//   └── versionCmd  (batchconv version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --env, --verbose)
//   2. Loading the main configuration
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/belgian-batch-converter/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// envFile is an optional .env file with overrides.
var envFile string

// verbose enables debug logging.
var verbose bool

// mainConfig is loaded before any subcommand runs.
var mainConfig *config.MainConfig

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "batchconv",
	Short: "Belgian batch converter - write and read DOM80 and BVB batch files",
	Long: `batchconv turns transaction exports (CSV or XLSX) into the fixed-width
batch files Belgian banks accept, and reads such files back for review.

Supported formats:
  - DOM80: domiciliation (direct-debit collection) batches
  - BVB:   domestic payment-order batches (collections and reimbursements)

Example Usage:
  batchconv write                          # Convert every file in the input directory
  batchconv write --input lidgeld.csv      # Convert a single export
  batchconv read out.dom80 --format dom80  # Print a batch file
  batchconv validate out.bvb --format bvb  # Check a batch file's trailer totals`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		cfg, err := config.LoadMainConfig(cfgFile, envFile)
		if err != nil {
			return fmt.Errorf("failed to load main config: %w", err)
		}
		mainConfig = cfg

		level := parseLevel(cfg.LogLevel)
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), level))
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml",
		"Path to the main configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "",
		"Path to a .env file with overrides (default is ./.env when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// formatFlag validates a --format value.
func formatFlag(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case config.FormatDOM80, config.FormatBVB:
		return f, nil
	default:
		return "", fmt.Errorf("--format %q: want %s or %s", s, config.FormatDOM80, config.FormatBVB)
	}
}
