// =============================================================================
// Belgian Batch Converter - Fixed-Width Record Codec
// =============================================================================
//
// This module defines the field types and warnings shared by the slot
// codec (codec.go), the DDMMYY date rule (date.go), the ASCII charset
// rule (charset.go) and the line assembler (line.go).
//
// LINE FORMAT:
//   - Every physical line is 128 bytes followed by CRLF
//   - N slots:  digits, zero-padded on the left
//   - AN slots: printable ASCII, space-padded on the right
//
// =============================================================================

// Package fixedwidth encodes and decodes the 128-column records used by the
// Belgian DOM80 and BVB batch files.
//
// A Structure is an ordered table of slots (name, width, type). Assemble
// turns a Record into one physical line, Parse does the reverse. Widths
// and offsets count bytes; assembled lines are printable ASCII.
package fixedwidth

import "fmt"

const (
	// LineWidth is the payload width of every physical line.
	LineWidth = 128

	// LineTerminator ends every physical line.
	LineTerminator = "\r\n"
)

// FieldType selects the encoding rule of a slot.
type FieldType int

const (
	// Numeric slots hold a non-negative integer, zero-padded on the left.
	Numeric FieldType = iota
	// AlphaNumeric slots hold text, left-justified and space-padded.
	AlphaNumeric
)

func (t FieldType) String() string {
	switch t {
	case Numeric:
		return "N"
	case AlphaNumeric:
		return "AN"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// WarningKind classifies a non-fatal encoding event.
type WarningKind int

const (
	WarnNone WarningKind = iota
	// WarnTruncated means an alphanumeric value was cut to the slot width.
	WarnTruncated
	// WarnDateOutOfCentury means a date outside 2000-2099 was wrapped to
	// two digits.
	WarnDateOutOfCentury
	// WarnTransliterated means accented letters were written as their
	// ASCII base letters. Truncation takes precedence when both apply.
	WarnTransliterated
)

func (k WarningKind) String() string {
	switch k {
	case WarnNone:
		return "none"
	case WarnTruncated:
		return "truncated"
	case WarnDateOutOfCentury:
		return "date out of century"
	case WarnTransliterated:
		return "transliterated"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// Warning reports a lossy but accepted encoding of one field.
type Warning struct {
	Structure string
	Field     string
	Kind      WarningKind
	Value     string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s.%s: %s (value: %q)", w.Structure, w.Field, w.Kind, w.Value)
}
