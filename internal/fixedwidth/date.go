package fixedwidth

import (
	"fmt"
	"time"
)

// FormatDate renders t as DDMMYY where YY is year-2000 taken modulo 100.
// The bool is true when the year lies outside 2000-2099 and the two digits
// therefore no longer identify the century. A zero time renders as 000000.
func FormatDate(t time.Time) (string, bool) {
	if t.IsZero() {
		return "000000", false
	}
	yy := (t.Year() - 2000) % 100
	if yy < 0 {
		yy += 100
	}
	outOfCentury := t.Year() < 2000 || t.Year() >= 2100
	return fmt.Sprintf("%02d%02d%02d", t.Day(), int(t.Month()), yy), outOfCentury
}

// ParseDate reads a DDMMYY value back into a date in the 2000-2099 century.
// 000000 yields the zero time.
func ParseDate(digits string) (time.Time, error) {
	if len(digits) != 6 || !isDigits(digits) {
		return time.Time{}, fmt.Errorf("date %q: want 6 digits DDMMYY", digits)
	}
	if digits == "000000" {
		return time.Time{}, nil
	}

	day := int(digits[0]-'0')*10 + int(digits[1]-'0')
	month := int(digits[2]-'0')*10 + int(digits[3]-'0')
	year := 2000 + int(digits[4]-'0')*10 + int(digits[5]-'0')

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("date %q: no such calendar day", digits)
	}
	return t, nil
}

// DateFromInt parses the int64 a Numeric slot decodes to as a DDMMYY date.
func DateFromInt(n int64) (time.Time, error) {
	if n < 0 || n > 999999 {
		return time.Time{}, fmt.Errorf("date %d: out of range", n)
	}
	return ParseDate(fmt.Sprintf("%06d", n))
}
