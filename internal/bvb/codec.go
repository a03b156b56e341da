package bvb

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ginjaninja78/belgian-batch-converter/internal/batch"
)

// ReadOptions controls Decode.
type ReadOptions struct {
	UnknownRecords batch.Policy
	ValidateTotals bool
	Logger         *slog.Logger
}

// DefaultReadOptions skips unknown records and validates totals.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{UnknownRecords: batch.PolicySkip, ValidateTotals: true}
}

// Encode writes doc to w: header, both parts of every order in order,
// trailer.
func Encode(w io.Writer, doc *Document, logger *slog.Logger) (batch.WriteStats, error) {
	bw := batch.NewWriter(w, Layout(), logger)

	if err := bw.WriteHeader(doc.Header.record()); err != nil {
		return bw.Stats(), err
	}
	for _, o := range doc.Orders {
		first, second := o.records()
		if err := bw.WriteDetail(first, second); err != nil {
			return bw.Stats(), err
		}
	}
	if err := bw.WriteTrailer(doc.Trailer.record()); err != nil {
		return bw.Stats(), err
	}
	return bw.Stats(), nil
}

// Decode reads a BVB file. An order with an unknown aard stops decoding.
// With ValidateTotals set, a trailer that disagrees with the orders yields
// the full document together with a *batch.TotalsMismatchError.
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
			var o Order
			o, err = orderFromRecord(e.Record)
			doc.Orders = append(doc.Orders, o)
		case batch.KindTrailer:
			doc.Trailer, err = trailerFromRecord(e.Record)
		}
		if err != nil {
			return nil, &batch.RecordError{Kind: e.Kind, Line: e.Line, Err: err}
		}
	}
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("decoding BVB: %w", err)
	}
	doc.Skipped = br.Skipped()

	if opts.ValidateTotals {
		if err := Validate(doc); err != nil {
			return doc, err
		}
	}
	return doc, nil
}

// Validate compares the trailer with totals recomputed from the orders.
// Overall amount and checksum are not part of the trailer and are not
// compared.
func Validate(doc *Document) error {
	computed := doc.Totals()
	tr := doc.Trailer

	var mismatches []batch.Mismatch
	mismatches = append(mismatches, batch.Compare("overall",
		batch.Totals{Records: tr.Records, Transactions: tr.Transactions},
		computed.Overall,
		batch.FieldRecords, batch.FieldTransactions)...)
	mismatches = append(mismatches, batch.Compare(Collection.String(),
		claimed(tr.Collections), computed.Collections,
		batch.FieldTransactions, batch.FieldAmount, batch.FieldChecksum)...)
	mismatches = append(mismatches, batch.Compare(Reimbursement.String(),
		claimed(tr.Reimbursements), computed.Reimbursements,
		batch.FieldTransactions, batch.FieldAmount, batch.FieldChecksum)...)

	if len(mismatches) > 0 {
		return &batch.TotalsMismatchError{Layout: "BVB", Mismatches: mismatches}
	}
	return nil
}

func claimed(k KindTotals) batch.Totals {
	return batch.Totals{Transactions: k.Count, Amount: k.Amount, Checksum: k.Checksum}
}
