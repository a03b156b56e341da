package bvb

import (
	"strconv"

	"github.com/ginjaninja78/belgian-batch-converter/internal/batch"
)

// Document is a complete BVB file.
type Document struct {
	Header  Header
	Orders  []Order
	Trailer Trailer

	// Skipped holds unknown lines passed over while reading.
	Skipped []batch.SkippedLine
}

// Totals are the running control values of a BVB batch: one accumulator
// over all orders and one per kind.
type Totals struct {
	Overall        batch.Totals
	Collections    batch.Totals
	Reimbursements batch.Totals
}

func (t *Totals) add(o Order) {
	t.Overall.Add(2, o.Amount, o.Account)
	switch o.Kind {
	case Collection:
		t.Collections.Add(2, o.Amount, o.Account)
	case Reimbursement:
		t.Reimbursements.Add(2, o.Amount, o.Account)
	}
}

func (t Totals) trailer() Trailer {
	return Trailer{
		Records:        t.Overall.TrailerRecords(),
		Transactions:   t.Overall.TrailerTransactions(),
		Collections:    kindTotals(t.Collections),
		Reimbursements: kindTotals(t.Reimbursements),
	}
}

func kindTotals(t batch.Totals) KindTotals {
	return KindTotals{Count: t.TrailerTransactions(), Amount: t.Amount, Checksum: t.Checksum}
}

// Batch builds a Document one order at a time. A Batch is owned by a
// single goroutine.
type Batch struct {
	header    Header
	orders    []Order
	totals    Totals
	finalized bool
}

// NewBatch starts a batch under the given header.
func NewBatch(h Header) *Batch {
	return &Batch{header: h}
}

// Append numbers o, checks its kind and both of its lines, then adds it
// to the overall and per-kind totals.
func (b *Batch) Append(o Order) error {
	if b.finalized {
		return batch.ErrFinalized
	}

	index := len(b.orders) + 1
	o.Sequence = batch.SequenceNumber(index)
	if !o.Kind.valid() {
		return &batch.RecordError{Kind: batch.KindDetail, Index: index,
			Err: &UnknownTransactionKindError{Sequence: o.Sequence, Value: strconv.Itoa(int(o.Kind))}}
	}

	first, second := o.records()
	if _, _, err := Order1Structure.Assemble(first); err != nil {
		return &batch.RecordError{Kind: batch.KindDetail, Index: index, Err: err}
	}
	if _, _, err := Order2Structure.Assemble(second); err != nil {
		return &batch.RecordError{Kind: batch.KindContinuation, Index: index, Err: err}
	}

	b.totals.add(o)
	b.orders = append(b.orders, o)
	return nil
}

// Len returns the number of orders appended.
func (b *Batch) Len() int { return len(b.orders) }

// Totals returns the running totals.
func (b *Batch) Totals() Totals { return b.totals }

// Finalize builds the trailer and returns the finished document. Totals
// too large for the trailer fail and leave the batch open.
func (b *Batch) Finalize() (*Document, error) {
	if b.finalized {
		return nil, batch.ErrFinalized
	}

	if _, _, err := HeaderStructure.Assemble(b.header.record()); err != nil {
		return nil, &batch.RecordError{Kind: batch.KindHeader, Err: err}
	}
	trailer := b.totals.trailer()
	if _, _, err := TrailerStructure.Assemble(trailer.record()); err != nil {
		return nil, &batch.RecordError{Kind: batch.KindTrailer, Err: err}
	}

	b.finalized = true
	orders := make([]Order, len(b.orders))
	copy(orders, b.orders)
	return &Document{Header: b.header, Orders: orders, Trailer: trailer}, nil
}

// Totals recomputes the control values from the document's orders.
func (d *Document) Totals() Totals {
	var t Totals
	for _, o := range d.Orders {
		t.add(o)
	}
	return t
}
