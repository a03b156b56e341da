package converter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/belgian-batch-converter/internal/bvb"
	"github.com/ginjaninja78/belgian-batch-converter/internal/config"
	"github.com/ginjaninja78/belgian-batch-converter/internal/types"
)

var maxCents = decimal.NewFromInt(999_999_999_999)

// MappingError reports an input cell that could not be turned into a
// transaction field.
type MappingError struct {
	Row    int
	Field  string
	Column string
	Value  string
	Err    error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("row %d: column %q (%s): %v", e.Row, e.Column, e.Field, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// MapRow maps one input row onto a transaction through the profile's
// column mapping. Unmapped fields stay empty.
func MapRow(row types.Row, src *config.SourceConfig) (types.Transaction, error) {
	cols := src.Columns
	tx := types.Transaction{
		Row:           row.Number,
		Name:          cell(row, cols.Name),
		Reference:     cell(row, cols.Reference),
		Communication: cell(row, cols.Communication),
		Address:       cell(row, cols.Address),
		City:          cell(row, cols.City),
	}
	fail := func(field, column string, err error) (types.Transaction, error) {
		return types.Transaction{}, &MappingError{
			Row: row.Number, Field: field, Column: column, Value: cell(row, column), Err: err,
		}
	}

	var err error
	if tx.Amount, err = ParseAmount(cell(row, cols.Amount)); err != nil {
		return fail("amount", cols.Amount, err)
	}
	if tx.Account, err = ParseAccount(cell(row, cols.Account)); err != nil {
		return fail("account", cols.Account, err)
	}
	if tx.Mandate, err = ParseAccount(cell(row, cols.Mandate)); err != nil {
		return fail("mandate", cols.Mandate, err)
	}

	if v := cell(row, cols.ValueDate); v != "" {
		if tx.ValueDate, err = time.Parse(src.DateFormat, v); err != nil {
			return fail("value_date", cols.ValueDate, fmt.Errorf("want layout %s", src.DateFormat))
		}
	}

	if src.Format == config.FormatBVB {
		raw := cell(row, cols.Kind)
		if raw == "" {
			raw = src.DefaultKind
		}
		kind, err := bvb.ParseKind(raw)
		if err != nil {
			return fail("kind", cols.Kind, err)
		}
		tx.Kind = int(kind)
	}
	return tx, nil
}

func cell(row types.Row, column string) string {
	if column == "" {
		return ""
	}
	return strings.TrimSpace(row.Values[column])
}

// ParseAmount converts a euro amount as typed in Belgian exports
// ("1.234,56", "25,00", "€ 17.5", "12") to cents. Amounts with more than
// two decimals or below zero are rejected rather than rounded.
func ParseAmount(s string) (int64, error) {
	s = strings.NewReplacer("€", "", "EUR", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, errors.New("amount is empty")
	}

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative amount %s", d)
	}
	if !d.Equal(d.Truncate(2)) {
		return 0, fmt.Errorf("amount %s has more than two decimals", d)
	}
	cents := d.Shift(2)
	if cents.GreaterThan(maxCents) {
		return 0, fmt.Errorf("amount %s exceeds 12 digits in cents", d)
	}
	return cents.IntPart(), nil
}

// ParseAccount reads an account or mandate number. Separators (spaces,
// dashes, dots, slashes) are ignored; a Belgian IBAN contributes its
// 12-digit BBAN. An empty value yields 0.
func ParseAccount(s string) (int64, error) {
	s = strings.ToUpper(strings.NewReplacer(" ", "", "-", "", ".", "", "/", "").Replace(s))
	if s == "" {
		return 0, nil
	}
	if len(s) == 16 && strings.HasPrefix(s, "BE") {
		s = s[4:]
	}
	if len(s) > 18 {
		return 0, fmt.Errorf("%q has too many digits", s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return n, nil
}
