// =============================================================================
// Belgian Batch Converter - Batch Totals Engine
// =============================================================================
//
// Running counts, amount totals and checksums written to and verified
// against batch trailers.
//
// ARITHMETIC:
//   - Checksum: sum of identifiers modulo 10^15, reduced after every add
//   - Counts:   reported modulo 10^4 in the trailer
//   - Amounts:  euro cents, never wrapped (overflow is a field error)
//
// =============================================================================

// Package batch holds the format-independent machinery of the DOM80 and
// BVB batch files: the running totals engine, the record dispatcher that
// reads a file line by line, and the ordered line writer.
package batch

const (
	// ChecksumModulus bounds the identifier checksum; it matches the 15
	// positions the trailer reserves for it.
	ChecksumModulus int64 = 1_000_000_000_000_000

	// CountModulus bounds record and transaction counts in the trailer.
	CountModulus = 10_000
)

// Totals accumulates the control values a trailer carries.
type Totals struct {
	Records      int
	Transactions int
	Amount       int64
	Checksum     int64
}

// Add accounts for one transaction spanning records physical lines.
// The checksum wraps after every addition; counts do not wrap here.
func (t *Totals) Add(records int, amount, identifier int64) {
	t.Records += records
	t.Transactions++
	t.Amount += amount
	t.Checksum = (t.Checksum + identifier%ChecksumModulus) % ChecksumModulus
}

// TrailerRecords is the record count as the trailer stores it.
func (t Totals) TrailerRecords() int { return t.Records % CountModulus }

// TrailerTransactions is the transaction count as the trailer stores it.
func (t Totals) TrailerTransactions() int { return t.Transactions % CountModulus }

// SequenceNumber is the volgnummer of the ordinal-th transaction (1-based).
// It wraps with the same modulus as the trailer counts.
func SequenceNumber(ordinal int) int { return ordinal % CountModulus }

// Field names one control value of a Totals.
type Field string

const (
	FieldRecords      Field = "records"
	FieldTransactions Field = "transactions"
	FieldAmount       Field = "amount"
	FieldChecksum     Field = "checksum"
)

// Mismatch is one control value on which the trailer and the recomputed
// totals disagree.
type Mismatch struct {
	Section  string
	Field    Field
	Trailer  int64
	Computed int64
}

// Compare checks the trailer's claimed totals against recomputed ones.
// Counts are compared in their trailer (wrapped) form. With no fields
// given every control value is compared.
func Compare(section string, trailer, computed Totals, fields ...Field) []Mismatch {
	if len(fields) == 0 {
		fields = []Field{FieldRecords, FieldTransactions, FieldAmount, FieldChecksum}
	}

	var out []Mismatch
	for _, f := range fields {
		var want, got int64
		switch f {
		case FieldRecords:
			want, got = int64(trailer.TrailerRecords()), int64(computed.TrailerRecords())
		case FieldTransactions:
			want, got = int64(trailer.TrailerTransactions()), int64(computed.TrailerTransactions())
		case FieldAmount:
			want, got = trailer.Amount, computed.Amount
		case FieldChecksum:
			want, got = trailer.Checksum, computed.Checksum
		}
		if want != got {
			out = append(out, Mismatch{Section: section, Field: f, Trailer: want, Computed: got})
		}
	}
	return out
}
