// =============================================================================
// Belgian Batch Converter - Read and Validate Commands
// =============================================================================
//
// COMMAND USAGE:
//   batchconv read FILE --format dom80|bvb [--export xml|xlsx] [--out PATH]
//                       [--skip-unknown]
//   batchconv validate FILE --format dom80|bvb
//
// 'read' parses a batch file, prints its header, details and trailer and
// optionally exports it. 'validate' recomputes the trailer totals and
// exits non-zero when they disagree.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/belgian-batch-converter/internal/batch"
	"github.com/ginjaninja78/belgian-batch-converter/internal/bvb"
	"github.com/ginjaninja78/belgian-batch-converter/internal/config"
	"github.com/ginjaninja78/belgian-batch-converter/internal/converter"
	"github.com/ginjaninja78/belgian-batch-converter/internal/dom80"
	"github.com/ginjaninja78/belgian-batch-converter/internal/types"
	"github.com/ginjaninja78/belgian-batch-converter/internal/xlsxparser"
	"github.com/ginjaninja78/belgian-batch-converter/internal/xmlwriter"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	readFormat      string
	readExport      string
	readOut         string
	readSkipUnknown bool

	validateFormat string
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var readCmd = &cobra.Command{
	Use:   "read FILE",
	Short: "Print a DOM80 or BVB batch file and optionally export it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatFlag(readFormat)
		if err != nil {
			return err
		}
		settings, err := mainConfig.Format(format)
		if err != nil {
			return err
		}

		view, err := decodeBatch(args[0], format, readSkipUnknown, settings.ShouldValidateTotals())
		if err != nil {
			return err
		}
		printView(cmd.OutOrStdout(), view)

		if readExport == "" {
			return nil
		}
		path, err := exportView(view, readExport, readOut, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nExported to %s\n", path)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a batch file's trailer against its details",
	Long: `The validate command parses a batch file with the configured unknown-record
policy, recomputes every trailer count, total and checksum and reports the
values that disagree. It exits non-zero when the file is malformed or any
control value is wrong.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatFlag(validateFormat)
		if err != nil {
			return err
		}
		view, err := decodeBatch(args[0], format, false, true)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(view.Problems) > 0 {
			for _, p := range view.Problems {
				fmt.Fprintf(out, "  ✗ %s\n", p)
			}
			return fmt.Errorf("%s: %d trailer value(s) wrong", filepath.Base(args[0]), len(view.Problems))
		}
		fmt.Fprintf(out, "  ✓ %s: %d transaction(s), trailer OK\n", filepath.Base(args[0]), len(view.Details))
		if len(view.SkippedLines) > 0 {
			fmt.Fprintf(out, "    skipped unknown record(s) at line(s) %s\n", joinInts(view.SkippedLines))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().StringVar(&readFormat, "format", "", "Batch format: dom80 or bvb")
	readCmd.Flags().StringVar(&readExport, "export", "", "Export the batch: xml or xlsx")
	readCmd.Flags().StringVar(&readOut, "out", "", "Export path (default is FILE with the export extension)")
	readCmd.Flags().BoolVar(&readSkipUnknown, "skip-unknown", false, "Skip unknown record types instead of applying the configured policy")
	readCmd.MarkFlagRequired("format")

	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateFormat, "format", "", "Batch format: dom80 or bvb")
	validateCmd.MarkFlagRequired("format")
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// decodeBatch reads a batch file into a view. Totals mismatches are
// returned as view problems; every other failure is an error.
func decodeBatch(path, format string, skipUnknown, validateTotals bool) (*types.BatchView, error) {
	settings, err := mainConfig.Format(format)
	if err != nil {
		return nil, err
	}
	policy, err := batch.ParsePolicy(settings.UnknownRecords)
	if err != nil {
		return nil, err
	}
	if skipUnknown {
		policy = batch.PolicySkip
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	logger := slog.Default().With("file", filepath.Base(path))
	name := filepath.Base(path)

	switch format {
	case config.FormatDOM80:
		doc, err := dom80.Decode(f, dom80.ReadOptions{UnknownRecords: policy, ValidateTotals: validateTotals, Logger: logger})
		if doc == nil {
			return nil, err
		}
		if err != nil && !errors.Is(err, batch.ErrTotalsMismatch) {
			return nil, err
		}
		return converter.DOM80View(name, doc, err), nil
	default:
		doc, err := bvb.Decode(f, bvb.ReadOptions{UnknownRecords: policy, ValidateTotals: validateTotals, Logger: logger})
		if doc == nil {
			return nil, err
		}
		if err != nil && !errors.Is(err, batch.ErrTotalsMismatch) {
			return nil, err
		}
		return converter.BVBView(name, doc, err), nil
	}
}

func exportView(view *types.BatchView, kind, out, input string) (string, error) {
	kind = strings.ToLower(kind)
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + "." + kind
	}

	switch kind {
	case "xml":
		data, err := xmlwriter.Generate(view)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write XML export: %w", err)
		}
	case "xlsx":
		if err := xlsxparser.ExportBatch(out, view); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("--export %q: want xml or xlsx", kind)
	}
	return out, nil
}

func printView(w io.Writer, view *types.BatchView) {
	fmt.Fprintf(w, "%s batch %s\n\n", view.Format, view.SourceFile)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Header")
	for _, f := range view.Header {
		fmt.Fprintf(tw, "  %s\t%s\n", f.Name, f.Value)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, strings.Join(view.Columns, "\t"))
	for _, row := range view.Details {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Trailer")
	for _, f := range view.Trailer {
		fmt.Fprintf(tw, "  %s\t%s\n", f.Name, f.Value)
	}
	tw.Flush()

	if len(view.SkippedLines) > 0 {
		fmt.Fprintf(w, "\nSkipped unknown record(s) at line(s) %s\n", joinInts(view.SkippedLines))
	}
	if len(view.Problems) > 0 {
		fmt.Fprintln(w, "\nTrailer problems:")
		for _, p := range view.Problems {
			fmt.Fprintf(w, "  ✗ %s\n", p)
		}
	}
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
