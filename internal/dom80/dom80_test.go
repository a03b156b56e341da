package dom80

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
	h := DefaultHeader(time.Date(2011, time.March, 1, 15, 4, 5, 0, time.UTC))
	h.BankCode = 123
	h.Reference = "REF0000001"
	h.CreditorID = 12345678901
	h.Account = 1234567890
	h.Name = "SPORTCLUB DE KEMPEN VZW"
	return h
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := NewBatch(testHeader())
	require.NoError(t, b.Append(Collection{
		Mandate: 100000000001, Name: "JANSSENS PIETER", Amount: 2500,
		Reference: "LID2011-001", Communication: "LIDGELD 2011",
	}))
	require.NoError(t, b.Append(Collection{
		Mandate: 2, Name: "PEETERS AN", Amount: 1750,
		Reference: "LID2011-002", Communication: "LIDGELD 2011 JEUGD",
	}))

	doc, err := b.Finalize()
	require.NoError(t, err)
	assert.Equal(t, Trailer{Records: 4, Transactions: 2, Amount: 4250, Checksum: 100000000003}, doc.Trailer)
	assert.Equal(t, 1, doc.Collections[0].Sequence)
	assert.Equal(t, 2, doc.Collections[1].Sequence)

	var buf bytes.Buffer
	stats, err := Encode(&buf, doc, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Lines)
	assert.Empty(t, stats.Warnings)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 6)
	for _, l := range lines {
		assert.Len(t, l, fixedwidth.LineWidth)
	}
	assert.Equal(t, "0"+"010311"+"123"+"02"+" "+"REF0000001"+"12345678901"+"001234567890", lines[0][:46])
	assert.Equal(t, "1"+"0001"+"100000000001", lines[1][:17])
	assert.Equal(t, "20001LIDGELD 2011 ", lines[2][:18])
	assert.Equal(t, "9"+"0004"+"0002"+"000000004250"+"000100000000003", lines[5][:36])

	decoded, err := Decode(&buf, ReadOptions{ValidateTotals: true, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
}

func TestMandateTooLongFailsAppend(t *testing.T) {
	b := NewBatch(testHeader())
	err := b.Append(Collection{Mandate: 100000000000001, Name: "X", Amount: 1})
	var re *batch.RecordError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 1, re.Index)
	assert.True(t, errors.Is(err, fixedwidth.ErrFieldLength))
	assert.Equal(t, 0, b.Len())
}

func TestChecksumWrapsModulo(t *testing.T) {
	doc := &Document{Collections: []Collection{
		{Mandate: 100000000000001, Amount: 500},
		{Mandate: 999999999999999, Amount: 700},
		{Mandate: 2, Amount: 300},
	}}
	tot := doc.Totals()
	assert.Equal(t, int64(1500), tot.Amount)
	assert.Equal(t, int64(100000000000002), tot.Checksum)
}

func TestTransactionCountWraps(t *testing.T) {
	b := NewBatch(testHeader())
	for i := 0; i < 10001; i++ {
		require.NoError(t, b.Append(Collection{Mandate: 1, Name: "N", Amount: 1}))
	}
	doc, err := b.Finalize()
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Trailer.Transactions)
	assert.Equal(t, 2, doc.Trailer.Records)
	assert.Equal(t, int64(10001), doc.Trailer.Amount)
	assert.Equal(t, 0, doc.Collections[9999].Sequence)
	assert.Equal(t, 1, doc.Collections[10000].Sequence)

	var buf bytes.Buffer
	_, err = Encode(&buf, doc, quietLogger())
	require.NoError(t, err)
	decoded, err := Decode(&buf, DefaultReadOptions())
	require.NoError(t, err)
	assert.Len(t, decoded.Collections, 10001)
}

func TestFinalizeIsTerminal(t *testing.T) {
	b := NewBatch(testHeader())
	require.NoError(t, b.Append(Collection{Mandate: 1, Name: "N", Amount: 1}))
	_, err := b.Finalize()
	require.NoError(t, err)

	assert.ErrorIs(t, b.Append(Collection{Mandate: 1, Name: "N", Amount: 1}), batch.ErrFinalized)
	_, err = b.Finalize()
	assert.ErrorIs(t, err, batch.ErrFinalized)
}

func TestTrailerAmountOverflowIsFatal(t *testing.T) {
	b := NewBatch(testHeader())
	require.NoError(t, b.Append(Collection{Mandate: 1, Name: "N", Amount: 999999999999}))
	require.NoError(t, b.Append(Collection{Mandate: 1, Name: "N", Amount: 1}))

	_, err := b.Finalize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, fixedwidth.ErrFieldLength))

	// the batch stays open
	assert.NoError(t, b.Append(Collection{Mandate: 1, Name: "N", Amount: 0}))
}

func TestAppendRejectsNegativeAmount(t *testing.T) {
	b := NewBatch(testHeader())
	err := b.Append(Collection{Mandate: 1, Name: "N", Amount: -5})
	assert.True(t, errors.Is(err, fixedwidth.ErrNonNumeric))
}

func TestDecodeReportsTotalsMismatch(t *testing.T) {
	doc := &Document{
		Header:      testHeader(),
		Collections: []Collection{{Sequence: 1, Mandate: 7, Name: "N", Amount: 100}},
		Trailer:     Trailer{Records: 2, Transactions: 1, Amount: 999, Checksum: 7},
	}
	var buf bytes.Buffer
	_, err := Encode(&buf, doc, quietLogger())
	require.NoError(t, err)

	decoded, err := Decode(&buf, DefaultReadOptions())
	require.Error(t, err)
	require.NotNil(t, decoded)
	assert.Len(t, decoded.Collections, 1)

	var tm *batch.TotalsMismatchError
	require.True(t, errors.As(err, &tm))
	require.Len(t, tm.Mismatches, 1)
	assert.Equal(t, batch.FieldAmount, tm.Mismatches[0].Field)
	assert.Equal(t, int64(999), tm.Mismatches[0].Trailer)
	assert.Equal(t, int64(100), tm.Mismatches[0].Computed)
}

func TestDecodeAbortsOnUnknownRecord(t *testing.T) {
	b := NewBatch(testHeader())
	require.NoError(t, b.Append(Collection{Mandate: 1, Name: "N", Amount: 1}))
	doc, err := b.Finalize()
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Encode(&buf, doc, quietLogger())
	require.NoError(t, err)

	lines := strings.SplitAfter(buf.String(), "\r\n")
	unknown := "5" + strings.Repeat(" ", fixedwidth.LineWidth-1) + "\r\n"
	input := lines[0] + unknown + strings.Join(lines[1:], "")

	_, err = Decode(strings.NewReader(input), DefaultReadOptions())
	assert.ErrorIs(t, err, batch.ErrUnknownRecordType)

	opts := DefaultReadOptions()
	opts.UnknownRecords = batch.PolicySkip
	opts.Logger = quietLogger()
	decoded, err := Decode(strings.NewReader(input), opts)
	require.NoError(t, err)
	require.Len(t, decoded.Skipped, 1)
	assert.Equal(t, 2, decoded.Skipped[0].Line)
}

func TestOutOfCenturyDateWarns(t *testing.T) {
	h := testHeader()
	h.MemoDate = time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC)
	b := NewBatch(h)
	doc, err := b.Finalize()
	require.NoError(t, err)

	var buf bytes.Buffer
	stats, err := Encode(&buf, doc, quietLogger())
	require.NoError(t, err)
	require.Len(t, stats.Warnings, 1)
	assert.Equal(t, "memodatum", stats.Warnings[0].Field)
	assert.Equal(t, fixedwidth.WarnDateOutOfCentury, stats.Warnings[0].Kind)

	slot, ok := HeaderStructure.Slot("memodatum")
	require.True(t, ok)
	assert.Equal(t, "311299", buf.String()[slot.Offset:slot.Offset+slot.Width])
}

func TestAppendRejectsLineBreakInCommunication(t *testing.T) {
	b := NewBatch(testHeader())
	err := b.Append(Collection{Mandate: 1, Name: "N", Amount: 1, Communication: "Factuur\r\n9123"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fixedwidth.ErrInvalidCharacter))

	var re *batch.RecordError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, batch.KindContinuation, re.Kind)
	assert.Equal(t, 0, b.Len())
}

func TestAccentedTextKeepsLinesAt128Bytes(t *testing.T) {
	h := testHeader()
	h.Name = "ÉÉÉ"
	b := NewBatch(h)
	require.NoError(t, b.Append(Collection{Mandate: 1, Name: "Müller", Amount: 1, Communication: "Schöne Grüße"}))
	doc, err := b.Finalize()
	require.NoError(t, err)

	var buf bytes.Buffer
	stats, err := Encode(&buf, doc, quietLogger())
	require.NoError(t, err)
	assert.Len(t, stats.Warnings, 3)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 4)
	for _, l := range lines {
		assert.Equal(t, fixedwidth.LineWidth, len(l))
	}

	decoded, err := Decode(&buf, ReadOptions{ValidateTotals: true, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, "EEE", decoded.Header.Name)
	assert.Equal(t, "Muller", decoded.Collections[0].Name)
	assert.Equal(t, "Schone Grusse", decoded.Collections[0].Communication)
}
