package fixedwidth

import (
	"fmt"
	"strconv"
	"time"
)

// Record maps field names to values: string, an integer kind or time.Time
// when assembling; string or int64 after parsing.
type Record map[string]any

// String returns the named value as text, or "" when absent.
func (r Record) String(name string) string {
	switch v := r[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the named value as an int64.
func (r Record) Int(name string) (int64, error) {
	switch v := r[name].(type) {
	case nil:
		return 0, &MissingFieldError{Field: name}
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case string:
		if !isDigits(v) {
			return 0, &NonNumericFieldError{Field: name, Value: v}
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, &FieldLengthError{Field: name, Width: len(v), Value: v}
		}
		return n, nil
	default:
		return 0, fmt.Errorf("field %q: %T is not an integer", name, v)
	}
}

// Date returns the named value as a date; parsed records carry dates as
// DDMMYY integers.
func (r Record) Date(name string) (time.Time, error) {
	switch v := r[name].(type) {
	case time.Time:
		return v, nil
	case string:
		return ParseDate(v)
	default:
		n, err := r.Int(name)
		if err != nil {
			return time.Time{}, err
		}
		return DateFromInt(n)
	}
}

// Merge copies the fields of other that r does not hold yet. Shared names
// such as the record code and sequence number keep r's value.
func (r Record) Merge(other Record) {
	for k, v := range other {
		if _, ok := r[k]; !ok {
			r[k] = v
		}
	}
}

// Extractor reads typed values out of a Record and keeps the first error,
// so that converting a parsed line into a struct needs one error check.
type Extractor struct {
	rec Record
	err error
}

// Extract returns an Extractor over r.
func (r Record) Extract() *Extractor { return &Extractor{rec: r} }

func (e *Extractor) Int(name string) int64 {
	if e.err != nil {
		return 0
	}
	n, err := e.rec.Int(name)
	if err != nil {
		e.err = err
	}
	return n
}

func (e *Extractor) Date(name string) time.Time {
	if e.err != nil {
		return time.Time{}
	}
	d, err := e.rec.Date(name)
	if err != nil {
		e.err = fmt.Errorf("field %q: %w", name, err)
	}
	return d
}

func (e *Extractor) String(name string) string { return e.rec.String(name) }

// Err returns the first conversion error.
func (e *Extractor) Err() error { return e.err }
