package xlsxparser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/belgian-batch-converter/internal/types"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadRows(t *testing.T) {
	path := writeWorkbook(t, "Leden", [][]any{
		{"Rekening", "Naam", "", "Bedrag"},
		{"001234567890", " Janssens Pieter ", "x", "25,00"},
		{"", "", "", ""},
		{"000000000002", "Peeters An"},
	})

	data, err := ReadRows(path, "")
	require.NoError(t, err)
	assert.Equal(t, "Leden", data.Sheet)
	assert.Equal(t, []string{"Rekening", "Naam", "Column_C", "Bedrag"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, 2, data.Rows[0].Number)
	assert.Equal(t, "Janssens Pieter", data.Rows[0].Values["Naam"])
	assert.Equal(t, 4, data.Rows[1].Number)
	assert.Equal(t, "", data.Rows[1].Values["Bedrag"])

	_, err = ReadRows(path, "Missing")
	assert.Error(t, err)
}

func TestExportBatch(t *testing.T) {
	view := &types.BatchView{
		Format:     "DOM80",
		SourceFile: "lidgeld.dom80",
		Header:     []types.Field{{Name: "naam", Value: "SPORTCLUB"}},
		Columns:    []string{"volgnummer", "naam", "bedrag"},
		Details: [][]string{
			{"1", "JANSSENS PIETER", "25.00"},
			{"2", "PEETERS AN", "17.50"},
		},
		Trailer:  []types.Field{{Name: "aantal_opdrachten", Value: "2"}},
		Problems: []string{"overall amount: trailer 1, computed 4250"},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, ExportBatch(path, view))

	details, err := ReadRows(path, DetailSheet)
	require.NoError(t, err)
	assert.Equal(t, view.Columns, details.Headers)
	require.Len(t, details.Rows, 2)
	assert.Equal(t, "PEETERS AN", details.Rows[1].Values["naam"])

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(SummarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "DOM80", v)
}
