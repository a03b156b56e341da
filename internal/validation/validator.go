// =============================================================================
// Belgian Batch Converter - Validation Engine
// =============================================================================
//
// This module validates mapped transactions before they are appended to a
// DOM80 or BVB batch. Field limits are read from the record structures of
// the target format, so they always match what the encoder will write.
//
// SEVERITIES:
//   - error:   the transaction cannot be encoded (missing name, account
//              wider than its slot, non-positive amount, unknown BVB kind,
//              line breaks or non-Latin characters in text)
//   - warning: the transaction encodes, but lossily (text truncated to its
//              slot or reduced to ASCII, value date outside 2000-2099)
//
// ERROR HANDLING:
//   - Errors are collected, not returned one at a time
//   - Each error carries the source row, field and value
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ginjaninja78/belgian-batch-converter/internal/batch"
	"github.com/ginjaninja78/belgian-batch-converter/internal/bvb"
	"github.com/ginjaninja78/belgian-batch-converter/internal/config"
	"github.com/ginjaninja78/belgian-batch-converter/internal/dom80"
	"github.com/ginjaninja78/belgian-batch-converter/internal/fixedwidth"
	"github.com/ginjaninja78/belgian-batch-converter/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field is the transaction field, e.g. "amount".
	Field string

	// Value is the offending value as text.
	Value string

	// Rule is the rule that was violated, e.g. "required", "max_digits".
	Rule string

	Message string

	// RowNumber is the source row number (for error reporting).
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] Row %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity), e.RowNumber, e.Field, e.Message, e.Value)
}

// IsFatal reports whether the finding blocks encoding.
func (e *ValidationError) IsFatal() bool { return e.Severity == SeverityError }

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all findings, warnings included.
	Errors []*ValidationError

	ErrorCount            int
	WarningCount          int
	TransactionsValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks transactions against the slot widths of one format.
type Validator struct {
	format  string
	options ValidationOptions

	// text maps a transaction text field to the width of its slot.
	text map[string]int
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// StopOnFirstError stops validation after the first fatal error.
	StopOnFirstError bool

	// MaxErrors caps the number of collected findings; zero means no cap.
	MaxErrors int
}

// DefaultValidationOptions returns options that collect every finding.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{}
}

// NewValidator creates a validator for the format ("dom80" or "bvb").
func NewValidator(format string) (*Validator, error) {
	return NewValidatorWithOptions(format, DefaultValidationOptions())
}

// NewValidatorWithOptions creates a validator with custom options.
func NewValidatorWithOptions(format string, options ValidationOptions) (*Validator, error) {
	v := &Validator{format: strings.ToLower(format), options: options}
	switch v.format {
	case config.FormatDOM80:
		v.text = map[string]int{
			"name":          width(dom80.CollectionStructure, "naam"),
			"reference":     width(dom80.CollectionStructure, "referentie"),
			"communication": width(dom80.CommunicationStructure, "mededeling"),
		}
	case config.FormatBVB:
		v.text = map[string]int{
			"name":          width(bvb.Order1Structure, "naam"),
			"reference":     width(bvb.Order1Structure, "referentie"),
			"address":       width(bvb.Order2Structure, "adres"),
			"city":          width(bvb.Order2Structure, "gemeente"),
			"communication": width(bvb.Order2Structure, "mededeling"),
		}
	default:
		return nil, fmt.Errorf("unknown batch format %q", format)
	}
	return v, nil
}

func width(s *fixedwidth.Structure, slot string) int {
	sl, ok := s.Slot(slot)
	if !ok {
		panic(fmt.Sprintf("structure %s has no slot %s", s.Name(), slot))
	}
	return sl.Width
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks transactions for the format with default options and
// returns every finding.
func Validate(format string, transactions []types.Transaction) ([]*ValidationError, error) {
	v, err := NewValidator(format)
	if err != nil {
		return nil, err
	}
	return v.ValidateAll(transactions).Errors, nil
}

// ValidateAll validates every transaction and the batch as a whole.
func (v *Validator) ValidateAll(transactions []types.Transaction) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	for i := range transactions {
		for _, e := range v.ValidateTransaction(&transactions[i]) {
			if v.options.MaxErrors > 0 && len(result.Errors) >= v.options.MaxErrors {
				break
			}
			result.Errors = append(result.Errors, e)
			if e.IsFatal() {
				result.ErrorCount++
				result.IsValid = false
			} else {
				result.WarningCount++
			}
		}
		result.TransactionsValidated++
		if v.options.StopOnFirstError && !result.IsValid {
			return result
		}
	}

	if len(transactions) >= batch.CountModulus {
		result.Errors = append(result.Errors, &ValidationError{
			Severity: SeverityWarning,
			Field:    "transactions",
			Value:    strconv.Itoa(len(transactions)),
			Rule:     "count_wraps",
			Message:  fmt.Sprintf("more than %d transactions; trailer counts and volgnummers wrap", batch.CountModulus-1),
		})
		result.WarningCount++
	}
	return result
}

// ValidateTransaction checks one transaction.
func (v *Validator) ValidateTransaction(tx *types.Transaction) []*ValidationError {
	var errs []*ValidationError
	add := func(severity, field, value, rule, msg string) {
		errs = append(errs, &ValidationError{
			Severity:  severity,
			Field:     field,
			Value:     value,
			Rule:      rule,
			Message:   msg,
			RowNumber: tx.Row,
		})
	}

	if strings.TrimSpace(tx.Name) == "" {
		add(SeverityError, "name", tx.Name, "required", "name is required")
	}

	amount := strconv.FormatInt(tx.Amount, 10)
	if tx.Amount <= 0 {
		add(SeverityError, "amount", amount, "positive", "amount must be positive")
	} else if len(amount) > 12 {
		add(SeverityError, "amount", amount, "max_digits", "amount exceeds 12 digits")
	}

	switch v.format {
	case config.FormatDOM80:
		if msg := checkIdentifier(tx.Mandate); msg != "" {
			add(SeverityError, "mandate", strconv.FormatInt(tx.Mandate, 10), "identifier", "mandate "+msg)
		}
	case config.FormatBVB:
		if msg := checkIdentifier(tx.Account); msg != "" {
			add(SeverityError, "account", strconv.FormatInt(tx.Account, 10), "identifier", "account "+msg)
		}
		if tx.Kind != int(bvb.Collection) && tx.Kind != int(bvb.Reimbursement) {
			add(SeverityError, "kind", strconv.Itoa(tx.Kind), "enum", "kind must be 1 (invordering) or 2 (terugbetaling)")
		}
		if !tx.ValueDate.IsZero() {
			if _, outOfCentury := fixedwidth.FormatDate(tx.ValueDate); outOfCentury {
				add(SeverityWarning, "value_date", tx.ValueDate.Format("2006-01-02"), "century",
					"value date outside 2000-2099 is written with its year modulo 100")
			}
		}
	}

	for _, f := range []struct{ name, value string }{
		{"name", tx.Name},
		{"reference", tx.Reference},
		{"address", tx.Address},
		{"city", tx.City},
		{"communication", tx.Communication},
	} {
		limit, ok := v.text[f.name]
		if !ok {
			continue
		}
		text, changed, err := fixedwidth.Transliterate(f.value)
		switch {
		case err != nil:
			add(SeverityError, f.name, f.value, "invalid_character", err.Error())
		case len(text) > limit:
			add(SeverityWarning, f.name, f.value, "max_length",
				fmt.Sprintf("%d characters will be truncated to %d", len(text), limit))
		case changed:
			add(SeverityWarning, f.name, f.value, "transliterated",
				fmt.Sprintf("will be written as %q", text))
		}
	}
	return errs
}

// checkIdentifier validates a 12-digit account or mandate number.
func checkIdentifier(n int64) string {
	switch {
	case n <= 0:
		return "is required"
	case n > 999_999_999_999:
		return "exceeds 12 digits"
	}
	return ""
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Validation completed with %d finding(s):\n\n", len(errors))
	for i, err := range errors {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, err.Error())
	}
	return builder.String()
}

// WriteErrorLog writes validation errors to filePath.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create validation log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(FormatErrors(errors)); err != nil {
		return fmt.Errorf("failed to write validation log: %w", err)
	}
	return writer.Flush()
}
