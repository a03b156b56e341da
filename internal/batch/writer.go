package batch

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"github.com/ginjaninja78/belgian-batch-converter/internal/fixedwidth"
)

// WriteStats summarises one written document.
type WriteStats struct {
	Lines    int
	Bytes    int64
	Details  int
	Warnings []fixedwidth.Warning
}

// Writer streams a document as 128-column CRLF lines in strict
// header, details, trailer order.
type Writer struct {
	layout Layout
	out    *bufio.Writer
	logger *slog.Logger

	state readState
	stats WriteStats
}

// NewWriter returns a Writer on w. A nil logger uses slog.Default().
func NewWriter(w io.Writer, layout Layout, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{layout: layout, out: bufio.NewWriter(w), logger: logger}
}

// WriteHeader writes the header line. It must be called first.
func (w *Writer) WriteHeader(rec fixedwidth.Record) error {
	if w.state != stateExpectHeader {
		return &DocumentError{Layout: w.layout.Name, Line: w.stats.Lines + 1, Reason: "header written twice"}
	}
	if err := w.writeLine(KindHeader, 0, w.layout.Header.Structure, rec); err != nil {
		return err
	}
	w.state = stateBody
	return nil
}

// WriteDetail writes one detail. parts holds one record per physical line
// of the detail, first part first.
func (w *Writer) WriteDetail(parts ...fixedwidth.Record) error {
	if w.state != stateBody {
		return &DocumentError{Layout: w.layout.Name, Line: w.stats.Lines + 1, Reason: "detail outside header and trailer"}
	}
	if len(parts) != w.layout.LinesPerDetail() {
		return fmt.Errorf("%w: %s detail needs %d parts, got %d",
			ErrMalformedDocument, w.layout.Name, w.layout.LinesPerDetail(), len(parts))
	}

	index := w.stats.Details + 1
	if err := w.writeLine(KindDetail, index, w.layout.Detail.Structure, parts[0]); err != nil {
		return err
	}
	if w.layout.Continuation != nil {
		if err := w.writeLine(KindContinuation, index, w.layout.Continuation.Structure, parts[1]); err != nil {
			return err
		}
	}
	w.stats.Details++
	return nil
}

// WriteTrailer writes the trailer line and flushes the output.
func (w *Writer) WriteTrailer(rec fixedwidth.Record) error {
	if w.state != stateBody {
		return &DocumentError{Layout: w.layout.Name, Line: w.stats.Lines + 1, Reason: "trailer without header or written twice"}
	}
	if err := w.writeLine(KindTrailer, 0, w.layout.Trailer.Structure, rec); err != nil {
		return err
	}
	w.state = stateClosed
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("flushing %s output: %w", w.layout.Name, err)
	}
	return nil
}

// Stats returns what has been written so far.
func (w *Writer) Stats() WriteStats { return w.stats }

func (w *Writer) writeLine(kind Kind, index int, s *fixedwidth.Structure, rec fixedwidth.Record) error {
	line, warnings, err := s.Assemble(rec)
	if err != nil {
		return &RecordError{Kind: kind, Index: index, Err: err}
	}
	for _, warn := range warnings {
		w.logger.Warn("lossy field encoding",
			"layout", w.layout.Name,
			"record", kind.String(),
			"index", index,
			"field", warn.Field,
			"kind", warn.Kind.String(),
			"value", warn.Value)
	}
	w.stats.Warnings = append(w.stats.Warnings, warnings...)

	n, err := w.out.WriteString(line + fixedwidth.LineTerminator)
	w.stats.Bytes += int64(n)
	if err != nil {
		return fmt.Errorf("writing %s line %d: %w", w.layout.Name, w.stats.Lines+1, err)
	}
	w.stats.Lines++
	return nil
}
