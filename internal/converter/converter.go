// =============================================================================
// Belgian Batch Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the whole
// pipeline for a single input export, from row parsing to a finished DOM80
// or BVB batch file.
//
// CONVERSION PIPELINE:
//   1. Read the input rows (CSV or XLSX)
//   2. Apply the profile's transformation rules to each row
//   3. Map rows onto transactions
//   4. Validate the transactions against the target format
//   5. Build the batch (sequence numbers, running totals, trailer)
//   6. Encode the batch file into the output directory
//   7. Archive the processed files
//
// CONCURRENCY:
//   A Converter handles one file and shares no mutable state, so the write
//   command runs one per input file in its own goroutine.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/belgian-batch-converter/internal/batch"
	"github.com/ginjaninja78/belgian-batch-converter/internal/bvb"
	"github.com/ginjaninja78/belgian-batch-converter/internal/config"
	"github.com/ginjaninja78/belgian-batch-converter/internal/csvparser"
	"github.com/ginjaninja78/belgian-batch-converter/internal/dom80"
	"github.com/ginjaninja78/belgian-batch-converter/internal/types"
	"github.com/ginjaninja78/belgian-batch-converter/internal/validation"
	"github.com/ginjaninja78/belgian-batch-converter/internal/xlsxparser"
	"github.com/ginjaninja78/belgian-batch-converter/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting a single file.
type Result struct {
	// RunID identifies this conversion in the logs.
	RunID string

	// FilePath is the input export that was processed.
	FilePath string

	// Source is the name of the profile that matched the input.
	Source string

	// Format is "dom80" or "bvb".
	Format string

	// OutputFile is the written batch file. Empty on failure and on dry
	// runs.
	OutputFile string

	Success bool

	// Error is nil if the conversion succeeded.
	Error error

	// Problems holds every validation finding, warnings included.
	Problems []*validation.ValidationError

	Stats ProcessingStats
}

// ProcessingStats contains statistics about the conversion.
type ProcessingStats struct {
	RowsProcessed       int
	TransactionsCreated int
	ValidationErrors    int
	ValidationWarnings  int

	// EncodingWarnings counts fields the encoder truncated or transliterated,
	// and dates outside 2000-2099.
	EncodingWarnings int

	// Lines and Bytes describe the written batch file.
	Lines int
	Bytes int64

	// Totals are the overall control values written to the trailer,
	// before count wrapping.
	Totals batch.Totals

	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options tune a conversion.
type Options struct {
	// DryRun runs the whole pipeline but discards the encoded batch.
	DryRun bool

	// Files archives inputs and outputs after success; nil disables
	// archiving.
	Files *utils.FileManager

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Now stamps the header dates; defaults to time.Now.
	Now func() time.Time
}

// Converter converts a single input export to a batch file.
type Converter struct {
	path   string
	source *config.SourceConfig
	main   *config.MainConfig
	opts   Options
	logger *slog.Logger
	runID  string
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter.
//
// PARAMETERS:
//   - path: The input export (.csv or .xlsx).
//   - source: The profile describing the export.
//   - mainConfig: The application configuration (originator, output).
//   - opts: Dry-run, archiving and logging options.
func New(path string, source *config.SourceConfig, mainConfig *config.MainConfig, opts Options) *Converter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	runID := uuid.NewString()
	return &Converter{
		path:   path,
		source: source,
		main:   mainConfig,
		opts:   opts,
		runID:  runID,
		logger: logger.With("run", runID, "file", filepath.Base(path), "format", source.Format),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
func (c *Converter) Run() (result Result) {
	startTime := time.Now()
	result = Result{
		RunID:    c.runID,
		FilePath: c.path,
		Source:   c.source.SourceName,
		Format:   c.source.Format,
	}
	defer func() { result.Stats.ProcessingTime = time.Since(startTime) }()

	// =========================================================================
	// STEP 1: READ INPUT ROWS
	// =========================================================================

	c.logger.Info("converting file", "source", c.source.SourceName)

	rows, err := c.loadRows()
	if err != nil {
		result.Error = fmt.Errorf("failed to read input: %w", err)
		return result
	}
	result.Stats.RowsProcessed = len(rows)
	c.logger.Debug("read input rows", "rows", len(rows))

	// =========================================================================
	// STEP 2: APPLY TRANSFORMATION RULES
	// =========================================================================

	transformer, err := NewTransformer(c.source.TransformationRules)
	if err != nil {
		result.Error = err
		return result
	}
	for i := range rows {
		if err := transformer.TransformRow(&rows[i]); err != nil {
			result.Error = fmt.Errorf("failed to apply transformations: %w", err)
			return result
		}
	}

	// =========================================================================
	// STEP 3: MAP ROWS TO TRANSACTIONS
	// =========================================================================
	// A row that cannot be mapped is a validation error; mapping continues
	// so the report lists every bad row at once.

	transactions := make([]types.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := MapRow(row, c.source)
		if err != nil {
			result.Problems = append(result.Problems, mappingProblem(err))
			continue
		}
		transactions = append(transactions, tx)
	}

	// =========================================================================
	// STEP 4: VALIDATE TRANSACTIONS
	// =========================================================================

	validator, err := validation.NewValidator(c.source.Format)
	if err != nil {
		result.Error = err
		return result
	}
	report := validator.ValidateAll(transactions)
	result.Problems = append(result.Problems, report.Errors...)

	for _, p := range result.Problems {
		if p.IsFatal() {
			result.Stats.ValidationErrors++
		} else {
			result.Stats.ValidationWarnings++
		}
		c.logger.Warn("validation finding", "severity", p.Severity, "row", p.RowNumber,
			"field", p.Field, "value", p.Value, "message", p.Message)
	}
	if result.Stats.ValidationErrors > 0 {
		result.Error = fmt.Errorf("validation failed with %d errors", result.Stats.ValidationErrors)
		return result
	}
	if len(transactions) == 0 {
		result.Error = errors.New("input contains no transactions")
		return result
	}

	// =========================================================================
	// STEP 5: BUILD THE BATCH
	// =========================================================================

	encode, totals, err := c.buildBatch(transactions)
	if err != nil {
		result.Error = fmt.Errorf("failed to build batch: %w", err)
		return result
	}
	result.Stats.TransactionsCreated = len(transactions)
	result.Stats.Totals = totals

	// =========================================================================
	// STEP 6: ENCODE THE BATCH FILE
	// =========================================================================

	var stats batch.WriteStats
	write := func(w io.Writer) error {
		var err error
		stats, err = encode(w)
		return err
	}

	if c.opts.DryRun {
		err = write(io.Discard)
	} else {
		result.OutputFile = filepath.Join(c.main.OutputDir, c.outputFileName())
		err = utils.WriteAtomic(result.OutputFile, write)
	}
	if err != nil {
		result.OutputFile = ""
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.Stats.Lines = stats.Lines
	result.Stats.Bytes = stats.Bytes
	result.Stats.EncodingWarnings = len(stats.Warnings)

	c.logger.Info("wrote batch file", "output", result.OutputFile, "transactions", len(transactions),
		"lines", stats.Lines, "amount", euro(totals.Amount), "dry_run", c.opts.DryRun)

	// =========================================================================
	// STEP 7: ARCHIVE FILES
	// =========================================================================

	if !c.opts.DryRun && c.opts.Files != nil {
		if err := c.archiveFiles(result.OutputFile); err != nil {
			// The batch file is complete; a failed archive is not a failed
			// conversion.
			c.logger.Warn("failed to archive files", "error", err)
		}
	}

	result.Success = true
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (c *Converter) loadRows() ([]types.Row, error) {
	switch strings.ToLower(filepath.Ext(c.path)) {
	case ".csv", ".txt":
		data, err := csvparser.Parse(c.path, c.source.CSVSettings)
		if err != nil {
			return nil, err
		}
		return data.Rows, nil
	case ".xlsx":
		data, err := xlsxparser.ReadRows(c.path, c.source.Sheet)
		if err != nil {
			return nil, err
		}
		return data.Rows, nil
	default:
		return nil, fmt.Errorf("unsupported input type %q", filepath.Ext(c.path))
	}
}

type encodeFunc func(io.Writer) (batch.WriteStats, error)

// buildBatch appends every transaction to a batch of the profile's format
// and finalizes it. It returns the document's encoder and overall totals.
func (c *Converter) buildBatch(transactions []types.Transaction) (encodeFunc, batch.Totals, error) {
	orig := c.main.Originator
	account, err := ParseAccount(orig.Account)
	if err != nil {
		return nil, batch.Totals{}, fmt.Errorf("originator account: %w", err)
	}
	created := c.opts.Now()

	switch c.source.Format {
	case config.FormatDOM80:
		creditor, err := ParseAccount(orig.CreditorID)
		if err != nil {
			return nil, batch.Totals{}, fmt.Errorf("originator creditor_id: %w", err)
		}
		h := dom80.DefaultHeader(created)
		h.BankCode = orig.BankCode
		h.Reference = c.source.Reference
		h.CreditorID = creditor
		h.Account = account
		h.Name = orig.Name

		b := dom80.NewBatch(h)
		for _, tx := range transactions {
			err := b.Append(dom80.Collection{
				Mandate:       tx.Mandate,
				Name:          tx.Name,
				Amount:        tx.Amount,
				Reference:     tx.Reference,
				Communication: tx.Communication,
			})
			if err != nil {
				return nil, batch.Totals{}, fmt.Errorf("row %d: %w", tx.Row, err)
			}
		}
		doc, err := b.Finalize()
		if err != nil {
			return nil, batch.Totals{}, err
		}
		return func(w io.Writer) (batch.WriteStats, error) {
			return dom80.Encode(w, doc, c.logger)
		}, b.Totals(), nil

	case config.FormatBVB:
		h := bvb.DefaultHeader(created)
		h.BankCode = orig.BankCode
		h.Reference = c.source.Reference
		h.Account = account
		h.Name = orig.Name
		h.Address = orig.Address
		h.City = orig.City

		b := bvb.NewBatch(h)
		for _, tx := range transactions {
			err := b.Append(bvb.Order{
				Kind:          bvb.Kind(tx.Kind),
				Account:       tx.Account,
				Amount:        tx.Amount,
				ValueDate:     tx.ValueDate,
				Name:          tx.Name,
				Reference:     tx.Reference,
				Address:       tx.Address,
				City:          tx.City,
				Communication: tx.Communication,
			})
			if err != nil {
				return nil, batch.Totals{}, fmt.Errorf("row %d: %w", tx.Row, err)
			}
		}
		doc, err := b.Finalize()
		if err != nil {
			return nil, batch.Totals{}, err
		}
		return func(w io.Writer) (batch.WriteStats, error) {
			return bvb.Encode(w, doc, c.logger)
		}, b.Totals().Overall, nil

	default:
		return nil, batch.Totals{}, fmt.Errorf("unknown batch format %q", c.source.Format)
	}
}

// outputFileName expands the configured name pattern. Placeholders:
// {format}, {source}, {original}, plus the generic {uuid}, {timestamp},
// {date} and {time}.
func (c *Converter) outputFileName() string {
	source := c.source.SourceCode
	if source == "" {
		source = c.source.SourceName
	}
	base := filepath.Base(c.path)
	return utils.GenerateOutputFileName(c.main.OutputNameFormat, map[string]string{
		"format":   c.source.Format,
		"source":   source,
		"original": strings.TrimSuffix(base, filepath.Ext(base)),
	}, "."+c.source.Format)
}

// archiveFiles moves the input to the input archive and copies the batch
// file to the output archive.
func (c *Converter) archiveFiles(outputPath string) error {
	if _, err := c.opts.Files.ArchiveInputFile(c.path); err != nil {
		return fmt.Errorf("failed to archive input file: %w", err)
	}
	if _, err := c.opts.Files.ArchiveOutputFile(outputPath); err != nil {
		return fmt.Errorf("failed to archive output file: %w", err)
	}
	return nil
}

func mappingProblem(err error) *validation.ValidationError {
	var me *MappingError
	if !errors.As(err, &me) {
		return &validation.ValidationError{Severity: validation.SeverityError, Rule: "parse", Message: err.Error()}
	}
	return &validation.ValidationError{
		Severity:  validation.SeverityError,
		Field:     me.Field,
		Value:     me.Value,
		Rule:      "parse",
		Message:   me.Err.Error(),
		RowNumber: me.Row,
	}
}
