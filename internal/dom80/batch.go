package dom80

import (
	"github.com/ginjaninja78/belgian-batch-converter/internal/batch"
)

// Document is a complete DOM80 file.
type Document struct {
	Header      Header
	Collections []Collection
	Trailer     Trailer

	// Skipped holds unknown lines passed over while reading.
	Skipped []batch.SkippedLine
}

// Batch builds a Document one collection at a time. A Batch is owned by a
// single goroutine.
type Batch struct {
	header      Header
	collections []Collection
	totals      batch.Totals
	finalized   bool
}

// NewBatch starts a batch under the given header.
func NewBatch(h Header) *Batch {
	return &Batch{header: h}
}

// Append numbers c, checks that both of its lines encode and adds it to
// the running totals.
func (b *Batch) Append(c Collection) error {
	if b.finalized {
		return batch.ErrFinalized
	}

	index := len(b.collections) + 1
	c.Sequence = batch.SequenceNumber(index)

	first, second := c.records()
	if _, _, err := CollectionStructure.Assemble(first); err != nil {
		return &batch.RecordError{Kind: batch.KindDetail, Index: index, Err: err}
	}
	if _, _, err := CommunicationStructure.Assemble(second); err != nil {
		return &batch.RecordError{Kind: batch.KindContinuation, Index: index, Err: err}
	}

	b.totals.Add(2, c.Amount, c.Mandate)
	b.collections = append(b.collections, c)
	return nil
}

// Len returns the number of collections appended.
func (b *Batch) Len() int { return len(b.collections) }

// Totals returns the running totals.
func (b *Batch) Totals() batch.Totals { return b.totals }

// Finalize builds the trailer and returns the finished document. A total
// amount too large for the trailer fails and leaves the batch open.
func (b *Batch) Finalize() (*Document, error) {
	if b.finalized {
		return nil, batch.ErrFinalized
	}

	if _, _, err := HeaderStructure.Assemble(b.header.record()); err != nil {
		return nil, &batch.RecordError{Kind: batch.KindHeader, Err: err}
	}
	trailer := trailerFromTotals(b.totals)
	if _, _, err := TrailerStructure.Assemble(trailer.record()); err != nil {
		return nil, &batch.RecordError{Kind: batch.KindTrailer, Err: err}
	}

	b.finalized = true
	collections := make([]Collection, len(b.collections))
	copy(collections, b.collections)
	return &Document{Header: b.header, Collections: collections, Trailer: trailer}, nil
}

func trailerFromTotals(t batch.Totals) Trailer {
	return Trailer{
		Records:      t.TrailerRecords(),
		Transactions: t.TrailerTransactions(),
		Amount:       t.Amount,
		Checksum:     t.Checksum,
	}
}

// Totals recomputes the control values from the document's collections.
func (d *Document) Totals() batch.Totals {
	var t batch.Totals
	for _, c := range d.Collections {
		t.Add(2, c.Amount, c.Mandate)
	}
	return t
}
