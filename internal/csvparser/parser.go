// =============================================================================
// Belgian Batch Converter - CSV Parser Module
// =============================================================================
//
// This module parses the delimited transaction exports that feed the batch
// writer. It handles:
//   - Different delimiters (semicolon, comma, pipe, tab)
//   - Multi-line headers
//   - Custom data start rows
//   - A leading UTF-8 byte order mark, common in spreadsheet exports
//
// Parse loads a whole file; StreamingParser yields one row at a time.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/belgian-batch-converter/internal/config"
	"github.com/ginjaninja78/belgian-batch-converter/internal/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// CSVData represents a parsed CSV file.
type CSVData struct {
	// Headers are the merged column headers.
	Headers []string

	// Rows are the non-empty data rows in file order.
	Rows []types.Row

	// SourceFile is the path of the parsed file, if any.
	SourceFile string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed data.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV settings of the source profile.
//
// RETURNS:
//   - The parsed data.
//   - An error if the file cannot be read or parsed.
func Parse(filePath string, settings config.CSVSettings) (*CSVData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	data.SourceFile = filePath
	return data, nil
}

// ParseReader parses CSV content from r.
//
// PARSING PROCESS:
//  1. Strip a UTF-8 byte order mark
//  2. Read and merge the header rows
//  3. Read data rows from the configured data start row
//  4. Convert each row to a map of header -> value
func ParseReader(r io.Reader, settings config.CSVSettings) (*CSVData, error) {
	p, err := newStreamingParser(r, settings)
	if err != nil {
		return nil, err
	}

	data := &CSVData{Headers: p.Headers()}
	for p.Next() {
		data.Rows = append(data.Rows, p.Row())
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) error {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	case "", ",", "comma":
		reader.Comma = ','
	default:
		reader.Comma = []rune(settings.Delimiter)[0]
	}

	if settings.QuoteChar != "" && settings.QuoteChar != "\"" {
		return fmt.Errorf("quote_char %q is not supported, only '\"'", settings.QuoteChar)
	}

	// Exports often end rows early when trailing cells are empty.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return nil
}

// extractHeaders merges the header rows into one header per column.
//
// MULTI-LINE HEADER HANDLING:
//
//	Row 1: "Rekening", "",       "Mededeling"
//	Row 2: "Nummer",   "Bedrag", ""
//	Result: "Rekening Nummer", "Bedrag", "Mededeling"
func extractHeaders(headerRows [][]string) []string {
	if len(headerRows) == 1 {
		return cleanHeaders(headerRows[0])
	}

	maxCols := 0
	for _, row := range headerRows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for _, row := range headerRows {
			if col < len(row) {
				if value := strings.TrimSpace(row[col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}
	return cleanHeaders(headers)
}

// cleanHeaders trims headers and names empty ones after their position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
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

// =============================================================================
// STREAMING PARSER FOR LARGE FILES
// =============================================================================

// StreamingParser processes rows one at a time.
//
// USAGE:
//
//	parser, err := NewStreamingParser(filePath, settings)
//	if err != nil {
//	    return err
//	}
//	defer parser.Close()
//
//	for parser.Next() {
//	    row := parser.Row()
//	    // Process the row...
//	}
//
//	if err := parser.Err(); err != nil {
//	    return err
//	}
type StreamingParser struct {
	closer     io.Closer
	reader     *csv.Reader
	headers    []string
	currentRow types.Row
	rowNumber  int
	err        error
	settings   config.CSVSettings
}

// NewStreamingParser opens a CSV file for row-by-row parsing.
func NewStreamingParser(filePath string, settings config.CSVSettings) (*StreamingParser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	parser, err := newStreamingParser(file, settings)
	if err != nil {
		file.Close()
		return nil, err
	}
	parser.closer = file
	return parser, nil
}

func newStreamingParser(r io.Reader, settings config.CSVSettings) (*StreamingParser, error) {
	if settings.HeaderRows <= 0 {
		return nil, errors.New("header_rows must be at least 1")
	}

	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	if err := configureReader(reader, settings); err != nil {
		return nil, err
	}

	parser := &StreamingParser{reader: reader, settings: settings}
	if err := parser.readHeaders(); err != nil {
		return nil, err
	}
	if err := parser.skipToDataStart(); err != nil {
		return nil, err
	}
	return parser, nil
}

// readHeaders reads and merges the header rows.
func (p *StreamingParser) readHeaders() error {
	headerRows := make([][]string, 0, p.settings.HeaderRows)
	for i := 0; i < p.settings.HeaderRows; i++ {
		row, err := p.reader.Read()
		if err == io.EOF {
			return errors.New("CSV file is empty or ends inside the header")
		}
		if err != nil {
			return fmt.Errorf("error reading header row %d: %w", i+1, err)
		}
		headerRows = append(headerRows, row)
		p.rowNumber++
	}
	p.headers = extractHeaders(headerRows)
	return nil
}

// skipToDataStart skips rows until the data start row.
func (p *StreamingParser) skipToDataStart() error {
	targetRow := p.settings.DataStartRow
	if targetRow <= 0 {
		targetRow = p.settings.HeaderRows + 1
	}

	for p.rowNumber < targetRow-1 {
		_, err := p.reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error skipping to data start: %w", err)
		}
		p.rowNumber++
	}
	return nil
}

// Next advances to the next non-empty row. Returns false when there are no
// more rows or on error.
func (p *StreamingParser) Next() bool {
	for p.err == nil {
		row, err := p.reader.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			p.err = fmt.Errorf("error reading row %d: %w", p.rowNumber+1, err)
			return false
		}
		p.rowNumber++

		if isRowEmpty(row) {
			continue
		}

		values := make(map[string]string, len(p.headers))
		for i, header := range p.headers {
			if i < len(row) {
				values[header] = strings.TrimSpace(row[i])
			} else {
				values[header] = ""
			}
		}
		p.currentRow = types.Row{Number: p.rowNumber, Values: values}
		return true
	}
	return false
}

// Row returns the current row.
func (p *StreamingParser) Row() types.Row {
	return p.currentRow
}

// Headers returns the parsed headers.
func (p *StreamingParser) Headers() []string {
	return p.headers
}

// Err returns any error that occurred during parsing.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close closes the underlying file.
func (p *StreamingParser) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
