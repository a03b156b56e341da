// =============================================================================
// Belgian Batch Converter - Shared Types
// =============================================================================
//
// This package contains the types exchanged between the input parsers, the
// converter and validation, kept apart to avoid import cycles:
//   - csvparser, xlsxparser produce Rows
//   - converter maps Rows to Transactions
//   - validation checks Transactions
//
// =============================================================================

package types

import "time"

// =============================================================================
// INPUT ROWS
// =============================================================================

// Row is one data row of an input export.
type Row struct {
	// Number is the 1-based row number in the source file, used in error
	// reports.
	Number int

	// Values maps column header to cell text.
	Values map[string]string
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// Transaction is the format-neutral form of one input row, ready to become
// a DOM80 collection or a BVB order.
type Transaction struct {
	// Row is the source row number.
	Row int

	// Kind is the BVB aard: 1 collection, 2 reimbursement. Zero for DOM80.
	Kind int

	// Account is the counterparty account number (digits only).
	Account int64

	// Mandate is the DOM80 domiciliation number.
	Mandate int64

	// Amount is in euro cents.
	Amount int64

	Name          string
	Reference     string
	Communication string
	Address       string
	City          string

	// ValueDate is the BVB valutadatum; zero when not given.
	ValueDate time.Time
}

// =============================================================================
// BATCH VIEWS
// =============================================================================

// Field is a named value of a header or trailer.
type Field struct {
	Name  string
	Value string
}

// BatchView is a format-neutral, display-ready rendering of a parsed batch
// file, consumed by the XML and XLSX exporters.
type BatchView struct {
	// Format is "DOM80" or "BVB".
	Format string

	// SourceFile is the batch file the view was read from.
	SourceFile string

	Header []Field

	// Columns name the cells of every Details row.
	Columns []string
	Details [][]string

	Trailer []Field

	// Problems lists totals mismatches; empty when the trailer checks out.
	Problems []string

	// SkippedLines are the line numbers of unknown records passed over.
	SkippedLines []int
}
