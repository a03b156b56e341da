// =============================================================================
// Belgian Batch Converter - Write Command
// =============================================================================
//
// This file defines the 'write' command, which converts transaction exports
// into DOM80 or BVB batch files.
//
// COMMAND USAGE:
//   batchconv write [flags]
//
// FLAGS:
//   --input   : Convert a single file instead of the whole input directory
//   --format  : Only convert files whose source profile has this format
//   --dry-run : Run the full pipeline without writing or archiving files
//
// PROCESSING PIPELINE:
//   1. Load the source profiles
//   2. Discover input files
//   3. Match each file to a source profile
//   4. Convert the files concurrently (bounded by max_concurrency)
//   5. Write an error log and print a summary
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/belgian-batch-converter/internal/config"
	"github.com/ginjaninja78/belgian-batch-converter/internal/converter"
	"github.com/ginjaninja78/belgian-batch-converter/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	writeDryRun bool
	writeInput  string
	writeFormat string
)

// errSkipped marks files not converted because an earlier file failed and
// continue_on_error is off.
var errSkipped = errors.New("skipped after an earlier failure")

// =============================================================================
// WRITE COMMAND DEFINITION
// =============================================================================

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Convert transaction exports to DOM80 or BVB batch files",
	Long: `The write command scans the input directory for CSV and XLSX exports,
matches each to a source profile and writes one batch file per export.

Files are converted concurrently. On success:
  - The batch file is placed in the output directory
  - The export is moved to the input archive
  - A copy of the batch file goes to the output archive

On error:
  - An error log is written next to the log file
  - The export remains in the input directory
  - Other files keep converting when continue_on_error is set`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWrite(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)

	writeCmd.Flags().BoolVar(&writeDryRun, "dry-run", false,
		"Run the conversion without writing output or archiving")
	writeCmd.Flags().StringVar(&writeInput, "input", "",
		"Convert only this file")
	writeCmd.Flags().StringVar(&writeFormat, "format", "",
		"Only convert files whose profile produces this format (dom80 or bvb)")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runWrite(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD SOURCE PROFILES
	// =========================================================================

	sources, err := config.LoadSourceConfigs(mainConfig.SourcesDir)
	if err != nil {
		return fmt.Errorf("failed to load source profiles: %w", err)
	}
	if writeFormat != "" {
		format, err := formatFlag(writeFormat)
		if err != nil {
			return err
		}
		sources = filterSources(sources, format)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no source profiles in %s", mainConfig.SourcesDir)
	}
	slog.Debug("loaded source profiles", "count", len(sources))

	files := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir,
		mainConfig.InputArchiveDir, mainConfig.OutputArchiveDir)
	if !writeDryRun {
		if err := files.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if writeInput != "" {
		inputFiles = []string{writeInput}
	} else {
		inputFiles, err = files.DiscoverInputFiles()
		if err != nil {
			return err
		}
	}
	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No input files found.")
		return nil
	}
	fmt.Fprintf(out, "Found %d file(s) to convert\n", len(inputFiles))

	// =========================================================================
	// STEP 3: CONVERT FILES CONCURRENTLY
	// =========================================================================
	// A buffered channel bounds the number of conversions in flight.

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan converter.Result, len(inputFiles))
	slots := make(chan struct{}, mainConfig.MaxConcurrency)

	for _, file := range inputFiles {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()

			select {
			case slots <- struct{}{}:
				defer func() { <-slots }()
			case <-ctx.Done():
				results <- converter.Result{FilePath: path, Error: errSkipped}
				return
			}
			if ctx.Err() != nil {
				results <- converter.Result{FilePath: path, Error: errSkipped}
				return
			}

			source, err := config.FindSource(sources, path)
			if err != nil {
				results <- converter.Result{FilePath: path, Error: err}
				if !mainConfig.ContinueOnError {
					cancel()
				}
				return
			}

			result := converter.New(path, source, mainConfig, converter.Options{
				DryRun: writeDryRun,
				Files:  files,
			}).Run()
			if !result.Success && !mainConfig.ContinueOnError {
				cancel()
			}
			results <- result
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	var successCount, errorCount int
	var logEntries []utils.ErrorLogEntry

	for result := range results {
		name := filepath.Base(result.FilePath)
		if result.Success {
			successCount++
			target := result.OutputFile
			if writeDryRun {
				target = "(dry run)"
			}
			fmt.Fprintf(out, "  ✓ %s -> %s (%d transactions, %d warnings)\n", name, target,
				result.Stats.TransactionsCreated, result.Stats.ValidationWarnings+result.Stats.EncodingWarnings)
			continue
		}

		errorCount++
		fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
		logEntries = append(logEntries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     name,
			ErrorType:    "conversion",
			ErrorMessage: result.Error.Error(),
		})
		for _, p := range result.Problems {
			if !p.IsFatal() {
				continue
			}
			logEntries = append(logEntries, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     name,
				ErrorType:    "validation",
				ErrorMessage: p.Message,
				RowNumber:    p.RowNumber,
				FieldName:    p.Field,
				FieldValue:   p.Value,
			})
		}
	}

	// =========================================================================
	// STEP 5: PRINT SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Conversion Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", len(inputFiles))
	fmt.Fprintf(out, "Successful:      %d\n", successCount)
	fmt.Fprintf(out, "Errors:          %d\n", errorCount)
	fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime).Round(time.Millisecond))

	if errorCount == 0 {
		return nil
	}
	if !writeDryRun {
		logDir := filepath.Dir(mainConfig.LogFile)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logPath, err := utils.WriteErrorLog(logEntries, logDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nErrors have been logged to %s\n", logPath)
	}
	return fmt.Errorf("%d of %d file(s) failed", errorCount, len(inputFiles))
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func filterSources(sources []*config.SourceConfig, format string) []*config.SourceConfig {
	var out []*config.SourceConfig
	for _, s := range sources {
		if s.Format == format {
			out = append(out, s)
		}
	}
	return out
}
