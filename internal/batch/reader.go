// =============================================================================
// Belgian Batch Converter - Record Dispatcher
// =============================================================================
//
// The Reader routes each physical line to a structure by its first
// character, merges two-line details on their volgnummer and enforces the
// header, details, trailer order of a batch document.
//
// UNKNOWN RECORD CODES:
//   - PolicyAbort: reading stops with *UnknownRecordTypeError
//   - PolicySkip:  the line is logged and listed in Skipped()
//
// =============================================================================

package batch

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ginjaninja78/belgian-batch-converter/internal/fixedwidth"
)

// Entry is one logical record of a batch file. For two-line details the
// continuation fields are already merged in and Line is the first line.
type Entry struct {
	Kind   Kind
	Line   int
	Record fixedwidth.Record
}

// SkippedLine is an unknown record passed over under PolicySkip.
type SkippedLine struct {
	Line int
	Code string
	Text string
}

// utf8BOM is stripped from the first line; spreadsheet tools and some
// Windows editors prepend it when saving.
const utf8BOM = "\ufeff"

type readState int

const (
	stateExpectHeader readState = iota
	stateBody
	stateClosed
)

// Reader dispatches the physical lines of a batch file to the structures
// of a Layout and yields logical records in input order. It is single-pass:
//
//	r := batch.NewReader(f, layout, nil)
//	for r.Next() {
//		e := r.Entry()
//		...
//	}
//	if err := r.Err(); err != nil { ... }
type Reader struct {
	layout  Layout
	scanner *bufio.Scanner
	logger  *slog.Logger

	line    int
	state   readState
	pending *Entry
	entry   Entry
	skipped []SkippedLine
	err     error
}

// NewReader returns a Reader over r. A nil logger uses slog.Default().
func NewReader(r io.Reader, layout Layout, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4*fixedwidth.LineWidth), 64*1024)
	return &Reader{layout: layout, scanner: sc, logger: logger}
}

// Next advances to the next logical record. It returns false at the end
// of the document or on the first error.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Text()
		if r.line == 1 {
			text = strings.TrimPrefix(text, utf8BOM)
		}
		if len(text) == 0 {
			continue
		}

		entry, ok, err := r.dispatch(text)
		if err != nil {
			r.err = err
			return false
		}
		if ok {
			r.entry = entry
			return true
		}
	}

	if err := r.scanner.Err(); err != nil {
		r.err = fmt.Errorf("reading %s line %d: %w", r.layout.Name, r.line+1, err)
		return false
	}
	r.err = r.checkEnd()
	return false
}

// Entry returns the record produced by the last successful Next.
func (r *Reader) Entry() Entry { return r.entry }

// Err returns the error that stopped the reader, if any.
func (r *Reader) Err() error { return r.err }

// Skipped lists the unknown lines passed over so far.
func (r *Reader) Skipped() []SkippedLine { return r.skipped }

// dispatch routes one physical line. ok is false when the line produced no
// logical record yet (skipped, or first part of a two-line detail).
func (r *Reader) dispatch(text string) (Entry, bool, error) {
	code, derr := fixedwidth.Discriminator(text)
	kind, structure, known := r.layout.route(code)
	known = known && derr == nil

	if r.pending != nil && (!known || kind != KindContinuation) {
		return Entry{}, false, r.sequenceError(firstChar(text),
			fmt.Sprintf("detail on line %d is not followed by its continuation", r.pending.Line))
	}
	if !known {
		return Entry{}, false, r.unknown(text)
	}

	switch r.state {
	case stateExpectHeader:
		if kind != KindHeader {
			return Entry{}, false, &DocumentError{Layout: r.layout.Name, Line: r.line, Reason: fmt.Sprintf("first record is a %s, want header", kind)}
		}
	case stateClosed:
		return Entry{}, false, &DocumentError{Layout: r.layout.Name, Line: r.line, Reason: fmt.Sprintf("%s after trailer", kind)}
	default:
		if kind == KindHeader {
			return Entry{}, false, &DocumentError{Layout: r.layout.Name, Line: r.line, Reason: "second header"}
		}
	}

	rec, err := structure.Parse(text)
	if err != nil {
		return Entry{}, false, &RecordError{Kind: kind, Line: r.line, Err: err}
	}

	switch kind {
	case KindHeader:
		r.state = stateBody
	case KindTrailer:
		r.state = stateClosed
	case KindDetail:
		if r.layout.Continuation != nil {
			r.pending = &Entry{Kind: KindDetail, Line: r.line, Record: rec}
			return Entry{}, false, nil
		}
	case KindContinuation:
		return r.merge(text, rec)
	}
	return Entry{Kind: kind, Line: r.line, Record: rec}, true, nil
}

func (r *Reader) merge(text string, rec fixedwidth.Record) (Entry, bool, error) {
	if r.pending == nil {
		return Entry{}, false, r.sequenceError(firstChar(text), "continuation without a preceding detail")
	}
	field := r.layout.SequenceField
	if field != "" {
		want, err := r.pending.Record.Int(field)
		if err != nil {
			return Entry{}, false, &RecordError{Kind: KindDetail, Line: r.pending.Line, Err: err}
		}
		got, err := rec.Int(field)
		if err != nil {
			return Entry{}, false, &RecordError{Kind: KindContinuation, Line: r.line, Err: err}
		}
		if want != got {
			return Entry{}, false, r.sequenceError(firstChar(text),
				fmt.Sprintf("out of sequence: %s %d follows %s %d", field, got, field, want))
		}
	}

	entry := *r.pending
	r.pending = nil
	entry.Record.Merge(rec)
	return entry, true, nil
}

func (r *Reader) unknown(text string) error {
	code := firstChar(text)
	if r.layout.Policy == PolicySkip {
		r.skipped = append(r.skipped, SkippedLine{Line: r.line, Code: code, Text: text})
		r.logger.Warn("skipping unknown record",
			"layout", r.layout.Name, "line", r.line, "code", code)
		return nil
	}
	return &UnknownRecordTypeError{Layout: r.layout.Name, Line: r.line, Code: code, Reason: "no handler registered"}
}

func (r *Reader) sequenceError(code, reason string) error {
	return &UnknownRecordTypeError{Layout: r.layout.Name, Line: r.line, Code: code, Reason: reason}
}

func (r *Reader) checkEnd() error {
	switch {
	case r.pending != nil:
		return r.sequenceError(fmt.Sprint(r.layout.Detail.Code),
			fmt.Sprintf("detail on line %d is not followed by its continuation", r.pending.Line))
	case r.state == stateExpectHeader:
		return &DocumentError{Layout: r.layout.Name, Line: r.line, Reason: "no header record"}
	case r.state != stateClosed:
		return &DocumentError{Layout: r.layout.Name, Line: r.line, Reason: "no trailer record"}
	}
	return nil
}

func firstChar(text string) string {
	for _, c := range text {
		return string(c)
	}
	return ""
}
