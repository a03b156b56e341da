package bvb

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/belgian-batch-converter/internal/batch"
	"github.com/ginjaninja78/belgian-batch-converter/internal/fixedwidth"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHeader() Header {
	h := DefaultHeader(time.Date(2011, time.March, 1, 0, 0, 0, 0, time.UTC))
	h.ExecutionDate = time.Date(2011, time.March, 3, 0, 0, 0, 0, time.UTC)
	h.BankCode = 734
	h.Reference = "BVB0311"
	h.Account = 734012345678
	h.Name = "GEMEENTE ZOERSEL"
	h.Address = "MARKT 1"
	h.City = "2980 ZOERSEL"
	return h
}

func encode(t *testing.T, doc *Document) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := Encode(&buf, doc, quietLogger())
	require.NoError(t, err)
	return buf.String()
}

func sampleBatch(t *testing.T) *Document {
	t.Helper()
	valuta := time.Date(2011, time.March, 3, 0, 0, 0, 0, time.UTC)
	b := NewBatch(testHeader())
	require.NoError(t, b.Append(Order{
		Kind: Collection, Account: 100000000001, Amount: 500, ValueDate: valuta,
		Name: "JANSSENS PIETER", Reference: "FACT-0001",
		Address: "KERKSTRAAT 12", City: "2980 ZOERSEL", Communication: "WATERFACTUUR 2010",
	}))
	require.NoError(t, b.Append(Order{
		Kind: Reimbursement, Account: 999999999999, Amount: 700, ValueDate: valuta,
		Name: "PEETERS AN", Reference: "TERUG-0001",
		Address: "DORP 3", City: "2390 MALLE", Communication: "TERUGBETALING WAARBORG",
	}))
	require.NoError(t, b.Append(Order{
		Kind: Collection, Account: 2, Amount: 300, ValueDate: valuta,
		Name: "WOUTERS JAN", Reference: "FACT-0002",
	}))
	doc, err := b.Finalize()
	require.NoError(t, err)
	return doc
}

func TestFinalizeKeepsPerKindTotals(t *testing.T) {
	doc := sampleBatch(t)
	assert.Equal(t, Trailer{
		Records:        6,
		Transactions:   3,
		Collections:    KindTotals{Count: 2, Amount: 800, Checksum: 100000000003},
		Reimbursements: KindTotals{Count: 1, Amount: 700, Checksum: 999999999999},
	}, doc.Trailer)

	tot := doc.Totals()
	assert.Equal(t, int64(1500), tot.Overall.Amount)
	assert.Equal(t, int64(100000000001+999999999999+2), tot.Overall.Checksum)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	doc := sampleBatch(t)
	out := encode(t, doc)

	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	require.Len(t, lines, 8)
	for _, l := range lines {
		assert.Len(t, l, fixedwidth.LineWidth)
	}
	assert.Equal(t, "0"+"010311"+"030311"+"734"+"01", lines[0][:18])
	assert.Equal(t, "1"+"0001"+"1"+"100000000001"+"000000000500"+"030311"+"JANSSENS PIETER", lines[1][:51])
	assert.Equal(t, "2"+"0001"+"KERKSTRAAT 12", lines[2][:18])
	assert.Equal(t, "1"+"0002"+"2", lines[3][:6])
	assert.Equal(t, "9"+"0006"+"0003"+"0002", lines[7][:13])

	decoded, err := Decode(strings.NewReader(out), ReadOptions{ValidateTotals: true, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)

	first := decoded.Orders[0]
	assert.Equal(t, "JANSSENS PIETER", first.Name)
	assert.Equal(t, "WATERFACTUUR 2010", first.Communication)
}

func TestDecodeRejectsReorderedOrderLines(t *testing.T) {
	lines := strings.SplitAfter(encode(t, sampleBatch(t)), "\r\n")
	lines[1], lines[2] = lines[2], lines[1]

	_, err := Decode(strings.NewReader(strings.Join(lines, "")), DefaultReadOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, batch.ErrUnknownRecordType))

	var ue *batch.UnknownRecordTypeError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 2, ue.Line)
}

func TestDecodeSkipsUnknownRecordsByDefault(t *testing.T) {
	lines := strings.SplitAfter(encode(t, sampleBatch(t)), "\r\n")
	garbled := "X" + strings.Repeat(" ", fixedwidth.LineWidth-1) + "\r\n"
	input := lines[0] + garbled + strings.Join(lines[1:], "")

	opts := DefaultReadOptions()
	opts.Logger = quietLogger()
	doc, err := Decode(strings.NewReader(input), opts)
	require.NoError(t, err)
	assert.Len(t, doc.Orders, 3)
	require.Len(t, doc.Skipped, 1)
	assert.Equal(t, "X", doc.Skipped[0].Code)

	opts.UnknownRecords = batch.PolicyAbort
	_, err = Decode(strings.NewReader(input), opts)
	assert.ErrorIs(t, err, batch.ErrUnknownRecordType)
}

func TestUnknownTransactionKind(t *testing.T) {
	b := NewBatch(testHeader())
	err := b.Append(Order{Kind: 3, Account: 1, Amount: 1, Name: "N"})
	assert.ErrorIs(t, err, ErrUnknownTransactionKind)
	assert.Equal(t, 0, b.Len())

	lines := strings.SplitAfter(encode(t, sampleBatch(t)), "\r\n")
	slot, ok := Order1Structure.Slot("aard")
	require.True(t, ok)
	lines[3] = lines[3][:slot.Offset] + "7" + lines[3][slot.Offset+1:]

	_, err = Decode(strings.NewReader(strings.Join(lines, "")), DefaultReadOptions())
	require.Error(t, err)
	var ke *UnknownTransactionKindError
	require.True(t, errors.As(err, &ke))
	assert.Equal(t, 2, ke.Sequence)
	assert.Equal(t, "7", ke.Value)

	var re *batch.RecordError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 4, re.Line)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Invordering")
	require.NoError(t, err)
	assert.Equal(t, Collection, k)

	k, err = ParseKind("2")
	require.NoError(t, err)
	assert.Equal(t, Reimbursement, k)

	_, err = ParseKind("gift")
	assert.ErrorIs(t, err, ErrUnknownTransactionKind)
}

func TestValidateReportsEveryMismatch(t *testing.T) {
	doc := sampleBatch(t)
	doc.Trailer.Collections.Amount = 1
	doc.Trailer.Reimbursements.Checksum = 5

	decoded, err := Decode(strings.NewReader(encode(t, doc)), DefaultReadOptions())
	require.NotNil(t, decoded)
	assert.Len(t, decoded.Orders, 3)

	var tm *batch.TotalsMismatchError
	require.True(t, errors.As(err, &tm))
	require.Len(t, tm.Mismatches, 2)
	assert.Equal(t, "invordering", tm.Mismatches[0].Section)
	assert.Equal(t, batch.FieldAmount, tm.Mismatches[0].Field)
	assert.Equal(t, "terugbetaling", tm.Mismatches[1].Section)
	assert.Equal(t, batch.FieldChecksum, tm.Mismatches[1].Field)
}

func TestTransactionCountWraps(t *testing.T) {
	b := NewBatch(testHeader())
	for i := 0; i < 10001; i++ {
		require.NoError(t, b.Append(Order{Kind: Collection, Account: 1, Amount: 1, Name: "N"}))
	}
	doc, err := b.Finalize()
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Trailer.Transactions)
	assert.Equal(t, 1, doc.Trailer.Collections.Count)
	assert.Equal(t, 0, doc.Trailer.Reimbursements.Count)
	assert.Equal(t, int64(10001), doc.Trailer.Collections.Amount)

	_, err = Decode(strings.NewReader(encode(t, doc)), DefaultReadOptions())
	assert.NoError(t, err)
}

func TestAppendAfterFinalize(t *testing.T) {
	b := NewBatch(testHeader())
	_, err := b.Finalize()
	require.NoError(t, err)
	assert.ErrorIs(t, b.Append(Order{Kind: Collection, Account: 1, Amount: 1}), batch.ErrFinalized)
}
