package converter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/belgian-batch-converter/internal/batch"
	"github.com/ginjaninja78/belgian-batch-converter/internal/bvb"
	"github.com/ginjaninja78/belgian-batch-converter/internal/dom80"
	"github.com/ginjaninja78/belgian-batch-converter/internal/types"
)

func TestDOM80View(t *testing.T) {
	b := dom80.NewBatch(dom80.DefaultHeader(created))
	require.NoError(t, b.Append(dom80.Collection{Mandate: 7, Name: "JANSSENS", Amount: 2500}))
	doc, err := b.Finalize()
	require.NoError(t, err)
	doc.Trailer.Amount = 1
	doc.Skipped = []batch.SkippedLine{{Line: 3, Code: "X"}}

	view := DOM80View("in.dom80", doc, dom80.Validate(doc))
	assert.Equal(t, "DOM80", view.Format)
	assert.Equal(t, []string{"1", "7", "JANSSENS", "25.00", "", ""}, view.Details[0])
	assert.Equal(t, []string{"overall amount: trailer 1, computed 2500"}, view.Problems)
	assert.Equal(t, []int{3}, view.SkippedLines)
	assert.Contains(t, view.Header, fieldOf("aanmaakdatum", "2011-03-01"))
}

func TestBVBView(t *testing.T) {
	b := bvb.NewBatch(bvb.DefaultHeader(created))
	require.NoError(t, b.Append(bvb.Order{
		Kind: bvb.Reimbursement, Account: 1234567890, Amount: 525, Name: "PEETERS",
		ValueDate: time.Date(2011, 3, 2, 0, 0, 0, 0, time.UTC),
	}))
	doc, err := b.Finalize()
	require.NoError(t, err)

	view := BVBView("in.bvb", doc, nil)
	assert.Empty(t, view.Problems)
	require.Len(t, view.Details, 1)
	assert.Equal(t, []string{"1", "terugbetaling", "001234567890", "5.25", "2011-03-02", "PEETERS", "", "", "", ""}, view.Details[0])
	assert.Contains(t, view.Trailer, fieldOf("totaal_terugbetalingen", "5.25"))

	other := BVBView("in.bvb", doc, errors.New("boom"))
	assert.Equal(t, []string{"boom"}, other.Problems)
}

func fieldOf(name, value string) types.Field {
	return types.Field{Name: name, Value: value}
}
