// =============================================================================
// Belgian Batch Converter - XLSX Module
// =============================================================================
//
// This module reads transaction exports kept as spreadsheets and writes
// parsed batch files back out as workbooks for review.
//
// INPUT LAYOUT:
//   The first row of the sheet holds the column headers; every following
//   non-empty row is one transaction. Column names are matched against the
//   source profile's column mapping, exactly as for CSV inputs.
//
//   | Rekening       | Naam            | Bedrag | Mededeling   |
//   |----------------|-----------------|--------|--------------|
//   | 001234567890   | JANSSENS PIETER | 25,00  | LIDGELD 2011 |
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/belgian-batch-converter/internal/types"
)

// =============================================================================
// SHEET DATA STRUCTURE
// =============================================================================

// SheetData is the content of one worksheet.
type SheetData struct {
	// SourceFile is the workbook path.
	SourceFile string

	// Sheet is the worksheet that was read.
	Sheet string

	Headers []string
	Rows    []types.Row
}

// =============================================================================
// READ FUNCTIONS
// =============================================================================

// ReadRows reads the transactions of one worksheet.
//
// PARAMETERS:
//   - path: The workbook path.
//   - sheet: The worksheet name; empty selects the first sheet.
//
// RETURNS:
//   - The headers and non-empty data rows of the sheet.
//   - An error if the workbook or sheet cannot be read.
func ReadRows(path, sheet string) (*SheetData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	data := &SheetData{SourceFile: path, Sheet: sheet, Headers: cleanHeaders(rows[0])}
	for i, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}
		values := make(map[string]string, len(data.Headers))
		for col, header := range data.Headers {
			if col < len(row) {
				values[header] = strings.TrimSpace(row[col])
			} else {
				values[header] = ""
			}
		}
		// rows[1:] starts at sheet row 2
		data.Rows = append(data.Rows, types.Row{Number: i + 2, Values: values})
	}
	return data, nil
}

// cleanHeaders trims headers and names empty ones after their column.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				name = fmt.Sprint(i + 1)
			}
			header = "Column_" + name
		}
		cleaned[i] = header
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
