package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalsChecksumWrapsOnEveryAdd(t *testing.T) {
	var tot Totals
	tot.Add(2, 500, 100000000000001)
	tot.Add(2, 700, 999999999999999)
	tot.Add(2, 300, 2)

	assert.Equal(t, int64(1500), tot.Amount)
	assert.Equal(t, int64(100000000000002), tot.Checksum)
	assert.Equal(t, 3, tot.Transactions)
	assert.Equal(t, 6, tot.Records)
}

func TestTotalsCountsWrapOnlyInTrailer(t *testing.T) {
	var tot Totals
	for i := 0; i < 10001; i++ {
		tot.Add(2, 1, 1)
	}
	assert.Equal(t, 10001, tot.Transactions)
	assert.Equal(t, 1, tot.TrailerTransactions())
	assert.Equal(t, 20002, tot.Records)
	assert.Equal(t, 2, tot.TrailerRecords())
	assert.Equal(t, int64(10001), tot.Amount)
}

func TestSequenceNumber(t *testing.T) {
	assert.Equal(t, 1, SequenceNumber(1))
	assert.Equal(t, 9999, SequenceNumber(9999))
	assert.Equal(t, 0, SequenceNumber(10000))
	assert.Equal(t, 1, SequenceNumber(10001))
}

func TestCompare(t *testing.T) {
	computed := Totals{Records: 10002, Transactions: 5001, Amount: 42, Checksum: 7}
	trailer := Totals{Records: 2, Transactions: 5001, Amount: 40, Checksum: 7}

	mismatches := Compare("overall", trailer, computed)
	require.Len(t, mismatches, 1)
	assert.Equal(t, Mismatch{Section: "overall", Field: FieldAmount, Trailer: 40, Computed: 42}, mismatches[0])

	assert.Empty(t, Compare("overall", trailer, computed, FieldRecords, FieldChecksum))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(" Skip ")
	require.NoError(t, err)
	assert.Equal(t, PolicySkip, p)

	p, err = ParsePolicy("abort")
	require.NoError(t, err)
	assert.Equal(t, PolicyAbort, p)

	_, err = ParsePolicy("ignore")
	assert.Error(t, err)
}
