package xlsxparser

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/belgian-batch-converter/internal/types"
)

// Sheet names of an exported batch workbook.
const (
	SummarySheet = "Samenvatting"
	DetailSheet  = "Opdrachten"
)

// ExportBatch writes a parsed batch file to an .xlsx workbook: a summary
// sheet with header, trailer and validation problems, and a detail sheet
// with one row per transaction.
func ExportBatch(path string, view *types.BatchView) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeSummary(f, view, bold); err != nil {
		return err
	}

	if _, err := f.NewSheet(DetailSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	if err := writeTable(f, DetailSheet, view.Columns, view.Details, bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write XLSX file: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, view *types.BatchView, bold int) error {
	rows := [][]string{{"Formaat", view.Format}, {"Bestand", view.SourceFile}, {}}
	rows = append(rows, []string{"Header"})
	for _, field := range view.Header {
		rows = append(rows, []string{field.Name, field.Value})
	}
	rows = append(rows, []string{}, []string{"Trailer"})
	for _, field := range view.Trailer {
		rows = append(rows, []string{field.Name, field.Value})
	}
	rows = append(rows, []string{}, []string{"Controle"})
	if len(view.Problems) == 0 {
		rows = append(rows, []string{"OK"})
	}
	for _, p := range view.Problems {
		rows = append(rows, []string{p})
	}
	for _, line := range view.SkippedLines {
		rows = append(rows, []string{"overgeslagen lijn", strconv.Itoa(line)})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
		if len(row) == 1 {
			if err := f.SetCellStyle(SummarySheet, cell, cell, bold); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(SummarySheet, "A", "B", 28)
}

func writeTable(f *excelize.File, sheet string, columns []string, rows [][]string, bold int) error {
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	if len(columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	for i, c := range columns {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(len(c) + 4)
		if width < 12 {
			width = 12
		}
		if err := f.SetColWidth(sheet, colName, colName, width); err != nil {
			return err
		}
	}
	return nil
}
