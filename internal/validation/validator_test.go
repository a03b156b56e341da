package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/belgian-batch-converter/internal/types"
)

func rules(errs []*ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Severity + ":" + e.Field + ":" + e.Rule
	}
	return out
}

func TestValidateDOM80(t *testing.T) {
	tests := []struct {
		name string
		tx   types.Transaction
		want []string
	}{
		{
			name: "valid",
			tx:   types.Transaction{Row: 2, Mandate: 123, Name: "JANSSENS", Amount: 2500},
			want: []string{},
		},
		{
			name: "missing name and amount",
			tx:   types.Transaction{Row: 3, Mandate: 123},
			want: []string{"error:name:required", "error:amount:positive"},
		},
		{
			name: "mandate too wide",
			tx:   types.Transaction{Row: 4, Mandate: 1_000_000_000_000, Name: "A", Amount: 1},
			want: []string{"error:mandate:identifier"},
		},
		{
			name: "long communication",
			tx:   types.Transaction{Row: 5, Mandate: 1, Name: "A", Amount: 1, Communication: strings.Repeat("x", 63)},
			want: []string{"warning:communication:max_length"},
		},
		{
			name: "line break in communication",
			tx:   types.Transaction{Row: 7, Mandate: 1, Name: "A", Amount: 1, Communication: "Factuur\r\n9123"},
			want: []string{"error:communication:invalid_character"},
		},
		{
			name: "accented name",
			tx:   types.Transaction{Row: 8, Mandate: 1, Name: "MÜLLER", Amount: 1},
			want: []string{"warning:name:transliterated"},
		},
		{
			name: "no ascii form",
			tx:   types.Transaction{Row: 9, Mandate: 1, Name: "王", Amount: 1},
			want: []string{"error:name:invalid_character"},
		},
		{
			name: "account is ignored",
			tx:   types.Transaction{Row: 6, Mandate: 1, Name: "A", Amount: 1, Account: -1, Kind: 9},
			want: []string{},
		},
	}

	v, err := NewValidator("DOM80")
	require.NoError(t, err)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules(v.ValidateTransaction(&tt.tx)))
		})
	}
}

func TestValidateBVB(t *testing.T) {
	v, err := NewValidator("bvb")
	require.NoError(t, err)

	tx := types.Transaction{
		Row:       7,
		Kind:      3,
		Name:      strings.Repeat("N", 27),
		Amount:    1_000_000_000_000,
		ValueDate: time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC),
		City:      strings.Repeat("é", 27),
	}
	errs := v.ValidateTransaction(&tx)
	assert.Equal(t, []string{
		"error:amount:max_digits",
		"error:account:identifier",
		"error:kind:enum",
		"warning:value_date:century",
		"warning:name:max_length",
		"warning:city:max_length",
	}, rules(errs))
	assert.Equal(t, 7, errs[0].RowNumber)
}

func TestValidateAll(t *testing.T) {
	txs := []types.Transaction{
		{Row: 2, Account: 1, Kind: 1, Name: "A", Amount: 1},
		{Row: 3, Account: 1, Kind: 2, Name: "", Amount: 1},
		{Row: 4, Account: 1, Kind: 2, Name: "B", Amount: 0},
	}

	v, err := NewValidator("bvb")
	require.NoError(t, err)
	result := v.ValidateAll(txs)
	assert.False(t, result.IsValid)
	assert.Equal(t, 2, result.ErrorCount)
	assert.Equal(t, 3, result.TransactionsValidated)

	v, err = NewValidatorWithOptions("bvb", ValidationOptions{StopOnFirstError: true})
	require.NoError(t, err)
	result = v.ValidateAll(txs)
	assert.Equal(t, 2, result.TransactionsValidated)
	assert.Len(t, result.Errors, 1)

	_, err = Validate("sepa", txs)
	assert.Error(t, err)
}

func TestValidateAllWarnsOnCountWrap(t *testing.T) {
	txs := make([]types.Transaction, 10_000)
	for i := range txs {
		txs[i] = types.Transaction{Row: i + 2, Mandate: int64(i + 1), Name: "A", Amount: 1}
	}
	errs, err := Validate("dom80", txs)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "count_wraps", errs[0].Rule)
	assert.False(t, errs[0].IsFatal())
}

func TestWriteErrorLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validation.txt")
	errs := []*ValidationError{{Severity: SeverityError, Field: "name", Rule: "required", Message: "name is required", RowNumber: 3}}
	require.NoError(t, WriteErrorLog(errs, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "1. [ERROR] Row 3, Field 'name': name is required")
	assert.Equal(t, "No validation errors.", FormatErrors(nil))
}
