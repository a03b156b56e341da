// =============================================================================
// Belgian Batch Converter - Line Assembler and Parser
// =============================================================================
//
// Assemble turns a Record into one 128-byte line; Parse slices a line
// back into a Record. Offsets are byte offsets.
//
// =============================================================================

package fixedwidth

import (
	"fmt"
	"strings"
)

// Assemble encodes rec slot by slot and pads the result to LineWidth. The
// returned line carries no terminator. Truncated text and out-of-century
// dates are returned as warnings; every other encoding problem aborts the
// record.
func (s *Structure) Assemble(rec Record) (string, []Warning, error) {
	var (
		b        strings.Builder
		warnings []Warning
	)
	b.Grow(LineWidth)

	for _, slot := range s.slots {
		value, ok := rec[slot.Name]
		if !ok {
			return "", warnings, &MissingFieldError{Structure: s.name, Field: slot.Name}
		}
		text, warn, err := Encode(value, slot.Width, slot.Type)
		if err != nil {
			return "", warnings, fmt.Errorf("%s: %w", s.name, withField(err, slot.Name))
		}
		if warn != WarnNone {
			warnings = append(warnings, Warning{
				Structure: s.name,
				Field:     slot.Name,
				Kind:      warn,
				Value:     fmt.Sprint(value),
			})
		}
		b.WriteString(text)
	}

	line := b.String()
	n := len(line)
	if n != s.width {
		return "", warnings, fmt.Errorf("%w: %s assembled %d of %d positions", ErrMalformedStructure, s.name, n, s.width)
	}
	if n > LineWidth {
		return "", warnings, fmt.Errorf("%w: %s is %d wide", ErrStructureTooWide, s.name, n)
	}
	return line + strings.Repeat(" ", LineWidth-n), warnings, nil
}

// Parse slices a physical line into the structure's slots by byte offset.
// A trailing CR/LF is ignored; lines shorter than Width are rejected.
func (s *Structure) Parse(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < s.width {
		return nil, &ParseError{
			Structure: s.name,
			Reason:    fmt.Sprintf("line has %d bytes, structure needs %d", len(line), s.width),
		}
	}

	rec := make(Record, len(s.slots))
	for _, slot := range s.slots {
		text := line[slot.Offset : slot.Offset+slot.Width]
		value, err := Decode(text, slot.Type)
		if err != nil {
			return nil, &ParseError{
				Structure: s.name,
				Field:     slot.Name,
				Reason:    "cannot decode slot",
				Err:       withField(err, slot.Name),
			}
		}
		rec[slot.Name] = value
	}
	return rec, nil
}

// Discriminator returns the record identification code held in the first
// character of a line.
func Discriminator(line string) (int, error) {
	if line == "" {
		return 0, &ParseError{Structure: "line", Reason: "empty line"}
	}
	c := line[0]
	if c < '0' || c > '9' {
		return 0, &ParseError{Structure: "line", Reason: fmt.Sprintf("record code %q is not a digit", c)}
	}
	return int(c - '0'), nil
}
