package batch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownRecordType = errors.New("unknown record type")
	ErrTotalsMismatch    = errors.New("trailer totals mismatch")
	ErrMalformedDocument = errors.New("malformed batch document")
	ErrFinalized         = errors.New("batch already finalized")
)

// UnknownRecordTypeError is returned for a line whose record code has no
// handler, and for a two-part transaction whose lines are out of sequence.
type UnknownRecordTypeError struct {
	Layout string
	Line   int
	Code   string
	Reason string
}

func (e *UnknownRecordTypeError) Error() string {
	return fmt.Sprintf("%s line %d: record code %q: %s", e.Layout, e.Line, e.Code, e.Reason)
}

func (e *UnknownRecordTypeError) Is(target error) bool { return target == ErrUnknownRecordType }

// DocumentError reports a header or trailer that is missing or misplaced.
type DocumentError struct {
	Layout string
	Line   int
	Reason string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s line %d: %s", e.Layout, e.Line, e.Reason)
}

func (e *DocumentError) Is(target error) bool { return target == ErrMalformedDocument }

// RecordError locates a codec error: the physical line when reading, the
// detail index when writing.
type RecordError struct {
	Kind  Kind
	Line  int
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d (%s): %v", e.Line, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s #%d: %v", e.Kind, e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// TotalsMismatchError lists every control value a trailer gets wrong.
type TotalsMismatchError struct {
	Layout     string
	Mismatches []Mismatch
}

func (e *TotalsMismatchError) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = fmt.Sprintf("%s %s: trailer %d, computed %d", m.Section, m.Field, m.Trailer, m.Computed)
	}
	return fmt.Sprintf("%s: trailer totals mismatch: %s", e.Layout, strings.Join(parts, "; "))
}

func (e *TotalsMismatchError) Is(target error) bool { return target == ErrTotalsMismatch }
