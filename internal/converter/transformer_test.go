package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/belgian-batch-converter/internal/config"
)

func TestApplyTransformation(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		action config.TransformationAction
		want   string
	}{
		{"trim", "  a b  ", config.TransformationAction{Type: "trim"}, "a b"},
		{"uppercase", "Peeters", config.TransformationAction{Type: "uppercase"}, "PEETERS"},
		{"lowercase", "GENT", config.TransformationAction{Type: "lowercase"}, "gent"},
		{"strip digits", "001-2345678-90", config.TransformationAction{Type: "strip_non_digits"}, "001234567890"},
		{"prepend", "2011", config.TransformationAction{Type: "prepend_string", Value: "LID"}, "LID2011"},
		{"append", "LID", config.TransformationAction{Type: "append_string", Value: "-01"}, "LID-01"},
		{"pad zeros", "123", config.TransformationAction{Type: "pad_zeros_to_length", Value: "6"}, "000123"},
		{"ensure shorter", "abc", config.TransformationAction{Type: "ensure_length", Value: "5"}, "abc  "},
		{"ensure longer", "àbcdef", config.TransformationAction{Type: "ensure_length", Value: "3"}, "àbc"},
		{"replace", "a.b.c", config.TransformationAction{Type: "replace", Find: ".", Value: ""}, "abc"},
		{"regex", "REF 12/34", config.TransformationAction{Type: "regex_replace", Find: `\D+`, Value: ""}, "1234"},
		{"lookup hit", "T", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"T": "2"}}, "2"},
		{"lookup miss", "X", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"T": "2"}}, "X"},
		{"default empty", " ", config.TransformationAction{Type: "default", Value: "N/A"}, "N/A"},
		{"default set", "x", config.TransformationAction{Type: "default", Value: "N/A"}, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyTransformation(tt.value, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyTransformationErrors(t *testing.T) {
	_, err := ApplyTransformation("x", config.TransformationAction{Type: "format_policy_number"})
	assert.ErrorContains(t, err, "unknown transformation type")

	_, err = ApplyTransformation("x", config.TransformationAction{Type: "pad_zeros_to_length", Value: "twelve"})
	assert.Error(t, err)

	_, err = NewTransformer([]config.TransformationRule{
		{Field: "Naam", Actions: []config.TransformationAction{{Type: "regex_replace", Find: "("}}},
	})
	assert.Error(t, err)
}

func TestTransformRow(t *testing.T) {
	tr, err := NewTransformer([]config.TransformationRule{
		{Field: "Rekening", Actions: []config.TransformationAction{{Type: "strip_non_digits"}, {Type: "pad_zeros_to_length", Value: "12"}}},
		{Field: "Soort", Actions: []config.TransformationAction{{Type: "default", Value: "I"}, {Type: "lookup", LookupTable: map[string]string{"I": "1", "T": "2"}}}},
	})
	require.NoError(t, err)

	row := rowOf(2, map[string]string{"Rekening": "123-45", "Naam": "x"})
	require.NoError(t, tr.TransformRow(&row))
	assert.Equal(t, map[string]string{"Rekening": "000000012345", "Naam": "x", "Soort": "1"}, row.Values)

	bad, err := NewTransformer([]config.TransformationRule{
		{Field: "Naam", Actions: []config.TransformationAction{{Type: "explode"}}},
	})
	require.NoError(t, err)
	row = rowOf(9, map[string]string{"Naam": "x"})
	assert.ErrorContains(t, bad.TransformRow(&row), "row 9")
}
