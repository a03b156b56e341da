// =============================================================================
// Belgian Batch Converter - Transformation Engine
// =============================================================================
//
// This module applies the transformation rules of a source profile to the
// raw column values of every input row, before the row is mapped onto a
// transaction.
//
// TRANSFORMATION PIPELINE:
//   1. Read the raw value from the row
//   2. Apply each action of the column's rule in order
//   3. Store the result back in the row
//
// SUPPORTED TRANSFORMATIONS:
//   - trim, uppercase, lowercase
//   - strip_non_digits: keep 0-9 only (account and mandate numbers)
//   - prepend_string, append_string
//   - pad_zeros_to_length, ensure_length
//   - replace, regex_replace
//   - lookup, default
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ginjaninja78/belgian-batch-converter/internal/config"
	"github.com/ginjaninja78/belgian-batch-converter/internal/types"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies the transformation rules of one source profile.
type Transformer struct {
	// rules maps a column header to its actions.
	rules map[string][]config.TransformationAction

	// order keeps the configured column order so results are deterministic
	// when one action reads another column.
	order []string

	// patterns caches compiled regex_replace patterns.
	patterns map[string]*regexp.Regexp
}

// NewTransformer creates a transformer from configured rules. Regular
// expressions are compiled up front so a bad pattern fails the profile
// instead of the first row that uses it.
func NewTransformer(rules []config.TransformationRule) (*Transformer, error) {
	t := &Transformer{
		rules:    make(map[string][]config.TransformationAction),
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, rule := range rules {
		if _, seen := t.rules[rule.Field]; !seen {
			t.order = append(t.order, rule.Field)
		}
		t.rules[rule.Field] = append(t.rules[rule.Field], rule.Actions...)

		for _, action := range rule.Actions {
			if action.Type != "regex_replace" || action.Find == "" {
				continue
			}
			re, err := regexp.Compile(action.Find)
			if err != nil {
				return nil, fmt.Errorf("invalid regex pattern for field %s: %w", rule.Field, err)
			}
			t.patterns[action.Find] = re
		}
	}
	return t, nil
}

// Transform applies the rules of fieldName to value.
func (t *Transformer) Transform(fieldName, value string) (string, error) {
	actions, ok := t.rules[fieldName]
	if !ok {
		return value, nil
	}

	result := value
	for _, action := range actions {
		var err error
		result, err = t.apply(result, action)
		if err != nil {
			return "", fmt.Errorf("transformation %s failed: %w", action.Type, err)
		}
	}
	return result, nil
}

// TransformRow applies all rules to a row in place. Rules for columns the
// row does not have are applied to an empty value, so "default" can fill
// in a missing column.
func (t *Transformer) TransformRow(row *types.Row) error {
	if row.Values == nil {
		row.Values = make(map[string]string)
	}
	for _, field := range t.order {
		transformed, err := t.Transform(field, row.Values[field])
		if err != nil {
			return fmt.Errorf("row %d: error transforming field '%s': %w", row.Number, field, err)
		}
		row.Values[field] = transformed
	}
	return nil
}

// =============================================================================
// TRANSFORMATION IMPLEMENTATIONS
// =============================================================================

// ApplyTransformation applies a single action to value.
func ApplyTransformation(value string, action config.TransformationAction) (string, error) {
	t := &Transformer{patterns: map[string]*regexp.Regexp{}}
	return t.apply(value, action)
}

func (t *Transformer) apply(value string, action config.TransformationAction) (string, error) {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "trim":
		return strings.TrimSpace(value), nil

	case "uppercase":
		// Names in both formats are conventionally upper case.
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "prepend_string":
		return action.Value + value, nil

	case "append_string":
		return value + action.Value, nil

	case "replace":
		// EXAMPLE:
		//   Input: "001-2345678-90"
		//   Action: replace with find "-" and value ""
		//   Output: "001234567890"
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "regex_replace":
		if action.Find == "" {
			return value, nil
		}
		re, ok := t.patterns[action.Find]
		if !ok {
			var err error
			if re, err = regexp.Compile(action.Find); err != nil {
				return "", fmt.Errorf("invalid regex pattern: %w", err)
			}
			t.patterns[action.Find] = re
		}
		return re.ReplaceAllString(value, action.Value), nil

	// =========================================================================
	// NUMERIC FORMATTING
	// =========================================================================

	case "strip_non_digits":
		// EXAMPLE:
		//   Input: "BE68 5390 0754 7034"
		//   Output: "68539007547034"
		return strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, value), nil

	case "pad_zeros_to_length":
		// EXAMPLE:
		//   Input: "123"
		//   Action: pad_zeros_to_length with value "12"
		//   Output: "000000000123"
		targetLength, err := strconv.Atoi(action.Value)
		if err != nil || targetLength <= 0 {
			return "", fmt.Errorf("invalid length %q", action.Value)
		}
		return PadLeft(value, targetLength, '0'), nil

	case "ensure_length":
		// Truncate or space-pad on the right to exactly Value characters.
		targetLength, err := strconv.Atoi(action.Value)
		if err != nil || targetLength <= 0 {
			return "", fmt.Errorf("invalid length %q", action.Value)
		}
		if utf8.RuneCountInString(value) > targetLength {
			return string([]rune(value)[:targetLength]), nil
		}
		return PadRight(value, targetLength, ' '), nil

	// =========================================================================
	// LOOKUPS AND DEFAULTS
	// =========================================================================

	case "lookup":
		// EXAMPLE:
		//   Input: "T"
		//   Action: lookup with lookup_table {"I": "1", "T": "2"}
		//   Output: "2"
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return value, nil

	case "default":
		if strings.TrimFunc(value, unicode.IsSpace) == "" {
			return action.Value, nil
		}
		return value, nil

	default:
		return "", fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PadLeft pads s on the left with padChar to length characters.
func PadLeft(s string, length int, padChar rune) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-n) + s
}

// PadRight pads s on the right with padChar to length characters.
func PadRight(s string, length int, padChar rune) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return s + strings.Repeat(string(padChar), length-n)
}
