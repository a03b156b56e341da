package fixedwidth

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Encode renders value into exactly width characters according to typ.
//
// Numeric slots accept integers, digit strings and time.Time (rendered as
// DDMMYY first). A magnitude needing more than width digits is a
// *FieldLengthError; anything that is not a non-negative decimal number is
// a *NonNumericFieldError.
//
// AlphaNumeric slots accept strings (and integers, rendered in decimal).
// Text is reduced to ASCII first (see Transliterate): accented letters
// are reported as WarnTransliterated, control characters and characters
// with no ASCII form are an *InvalidCharacterError. Values longer than
// width are cut and reported as WarnTruncated.
func Encode(value any, width int, typ FieldType) (string, WarningKind, error) {
	if width <= 0 {
		return "", WarnNone, fmt.Errorf("%w: width %d", ErrMalformedStructure, width)
	}
	switch typ {
	case Numeric:
		return encodeNumeric(value, width)
	case AlphaNumeric:
		return encodeAlphaNumeric(value, width)
	default:
		return "", WarnNone, fmt.Errorf("%w: unknown field type %s", ErrMalformedStructure, typ)
	}
}

func encodeNumeric(value any, width int) (string, WarningKind, error) {
	warn := WarnNone
	var digits string

	switch v := value.(type) {
	case time.Time:
		d, outOfCentury := FormatDate(v)
		if outOfCentury {
			warn = WarnDateOutOfCentury
		}
		digits = d
	case string:
		digits = v
	case int:
		digits = strconv.FormatInt(int64(v), 10)
	case int32:
		digits = strconv.FormatInt(int64(v), 10)
	case int64:
		digits = strconv.FormatInt(v, 10)
	case uint:
		digits = strconv.FormatUint(uint64(v), 10)
	case uint32:
		digits = strconv.FormatUint(uint64(v), 10)
	case uint64:
		digits = strconv.FormatUint(v, 10)
	default:
		return "", WarnNone, &NonNumericFieldError{Value: fmt.Sprint(value)}
	}

	if !isDigits(digits) {
		return "", WarnNone, &NonNumericFieldError{Value: digits}
	}

	magnitude := strings.TrimLeft(digits, "0")
	if len(magnitude) > width {
		return "", WarnNone, &FieldLengthError{Width: width, Value: digits}
	}
	return strings.Repeat("0", width-len(magnitude)) + magnitude, warn, nil
}

func encodeAlphaNumeric(value any, width int) (string, WarningKind, error) {
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case int:
		text = strconv.Itoa(v)
	case int64:
		text = strconv.FormatInt(v, 10)
	case fmt.Stringer:
		text = v.String()
	default:
		return "", WarnNone, fmt.Errorf("alphanumeric field: unsupported value type %T", value)
	}

	text, changed, err := Transliterate(text)
	if err != nil {
		return "", WarnNone, err
	}

	warn := WarnNone
	if changed {
		warn = WarnTransliterated
	}
	if len(text) > width {
		text = text[:width]
		warn = WarnTruncated
	}
	return text + strings.Repeat(" ", width-len(text)), warn, nil
}

// Decode converts one slot's text back into a value: int64 for Numeric
// (an all-blank slot decodes as 0), right-trimmed string for AlphaNumeric.
func Decode(text string, typ FieldType) (any, error) {
	switch typ {
	case Numeric:
		if strings.TrimSpace(text) == "" {
			return int64(0), nil
		}
		if !isDigits(text) {
			return nil, &NonNumericFieldError{Value: text}
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, &FieldLengthError{Width: len(text), Value: text}
		}
		return n, nil
	case AlphaNumeric:
		return strings.TrimRight(text, " "), nil
	default:
		return nil, fmt.Errorf("%w: unknown field type %s", ErrMalformedStructure, typ)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
