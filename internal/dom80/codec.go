package dom80

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ginjaninja78/belgian-batch-converter/internal/batch"
)

// ReadOptions controls Decode.
type ReadOptions struct {
	// UnknownRecords decides what happens to lines with an unregistered
	// record code. DOM80 aborts by default.
	UnknownRecords batch.Policy
	// ValidateTotals recomputes the trailer values from the details.
	ValidateTotals bool
	Logger         *slog.Logger
}

// DefaultReadOptions aborts on unknown records and validates totals.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{UnknownRecords: batch.PolicyAbort, ValidateTotals: true}
}

// Encode writes doc to w: header, every collection in order, trailer.
func Encode(w io.Writer, doc *Document, logger *slog.Logger) (batch.WriteStats, error) {
	bw := batch.NewWriter(w, Layout(), logger)

	if err := bw.WriteHeader(doc.Header.record()); err != nil {
		return bw.Stats(), err
	}
	for _, c := range doc.Collections {
		first, second := c.records()
		if err := bw.WriteDetail(first, second); err != nil {
			return bw.Stats(), err
		}
	}
	if err := bw.WriteTrailer(doc.Trailer.record()); err != nil {
		return bw.Stats(), err
	}
	return bw.Stats(), nil
}

// Decode reads a DOM80 file. With ValidateTotals set, a trailer that
// disagrees with the details yields the full document together with a
// *batch.TotalsMismatchError.
func Decode(r io.Reader, opts ReadOptions) (*Document, error) {
	br := batch.NewReader(r, Layout().WithPolicy(opts.UnknownRecords), opts.Logger)

	doc := &Document{}
	for br.Next() {
		e := br.Entry()
		var err error
		switch e.Kind {
		case batch.KindHeader:
			doc.Header, err = headerFromRecord(e.Record)
		case batch.KindDetail:
			var c Collection
			c, err = collectionFromRecord(e.Record)
			doc.Collections = append(doc.Collections, c)
		case batch.KindTrailer:
			doc.Trailer, err = trailerFromRecord(e.Record)
		}
		if err != nil {
			return nil, &batch.RecordError{Kind: e.Kind, Line: e.Line, Err: err}
		}
	}
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("decoding DOM80: %w", err)
	}
	doc.Skipped = br.Skipped()

	if opts.ValidateTotals {
		if err := Validate(doc); err != nil {
			return doc, err
		}
	}
	return doc, nil
}

// Validate compares the trailer with totals recomputed from the details.
func Validate(doc *Document) error {
	claimed := batch.Totals{
		Records:      doc.Trailer.Records,
		Transactions: doc.Trailer.Transactions,
		Amount:       doc.Trailer.Amount,
		Checksum:     doc.Trailer.Checksum,
	}
	mismatches := batch.Compare("overall", claimed, doc.Totals())
	if len(mismatches) > 0 {
		return &batch.TotalsMismatchError{Layout: "DOM80", Mismatches: mismatches}
	}
	return nil
}
