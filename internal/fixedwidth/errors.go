package fixedwidth

import (
	"errors"
	"fmt"
)

var (
	ErrFieldLength        = errors.New("value does not fit field width")
	ErrNonNumeric         = errors.New("non-numeric value in numeric field")
	ErrMissingField       = errors.New("field missing from record")
	ErrParse              = errors.New("malformed line")
	ErrStructureTooWide   = errors.New("structure exceeds line width")
	ErrMalformedStructure = errors.New("malformed structure definition")
	ErrInvalidCharacter   = errors.New("character not allowed in alphanumeric field")
)

// FieldLengthError is returned when a value needs more positions than its
// slot provides.
type FieldLengthError struct {
	Field string
	Width int
	Value string
}

func (e *FieldLengthError) Error() string {
	return fmt.Sprintf("field %q: value %q does not fit %d positions", e.Field, e.Value, e.Width)
}

func (e *FieldLengthError) Is(target error) bool { return target == ErrFieldLength }

// NonNumericFieldError is returned when a numeric slot is given anything
// but decimal digits.
type NonNumericFieldError struct {
	Field string
	Value string
}

func (e *NonNumericFieldError) Error() string {
	return fmt.Sprintf("field %q: %q is not a non-negative decimal number", e.Field, e.Value)
}

func (e *NonNumericFieldError) Is(target error) bool { return target == ErrNonNumeric }

// InvalidCharacterError is returned when alphanumeric text holds a control
// character or a character with no ASCII form. Char is zero when the
// offending character could not be isolated.
type InvalidCharacterError struct {
	Field string
	Value string
	Char  rune
}

func (e *InvalidCharacterError) Error() string {
	if e.Char == 0 {
		return fmt.Sprintf("field %q: %q cannot be written as ASCII", e.Field, e.Value)
	}
	return fmt.Sprintf("field %q: character %U not allowed in %q", e.Field, e.Char, e.Value)
}

func (e *InvalidCharacterError) Is(target error) bool { return target == ErrInvalidCharacter }

// MissingFieldError is returned by Assemble when the record lacks a
// declared field.
type MissingFieldError struct {
	Structure string
	Field     string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: field %q missing from record", e.Structure, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// ParseError is returned when a physical line cannot be split into the
// slots of a structure.
type ParseError struct {
	Structure string
	Field     string
	Reason    string
	Err       error
}

func (e *ParseError) Error() string {
	msg := e.Structure
	if e.Field != "" {
		msg += "." + e.Field
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

// withField stamps the slot name on codec errors raised without one.
func withField(err error, field string) error {
	var fl *FieldLengthError
	if errors.As(err, &fl) && fl.Field == "" {
		fl.Field = field
	}
	var nn *NonNumericFieldError
	if errors.As(err, &nn) && nn.Field == "" {
		nn.Field = field
	}
	var ic *InvalidCharacterError
	if errors.As(err, &ic) && ic.Field == "" {
		ic.Field = field
	}
	return err
}
