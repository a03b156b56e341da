package fixedwidth

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Batch files are positional by byte, so alphanumeric slots carry printable
// ASCII only. Accented letters are reduced to their base letter; anything
// else outside ASCII, and every control character, is rejected.

var ligatures = strings.NewReplacer(
	"ß", "ss",
	"Æ", "AE", "æ", "ae",
	"Œ", "OE", "œ", "oe",
	"Ø", "O", "ø", "o",
	"Ł", "L", "ł", "l",
	"€", "EUR",
	"\u00a0", " ",
	"\u2018", "'", "\u2019", "'",
	"\u201c", `"`, "\u201d", `"`,
	"\u2013", "-", "\u2014", "-",
)

// Transliterate returns text reduced to printable ASCII. changed reports
// whether any character was replaced. A control character, or a character
// with no ASCII form, is an *InvalidCharacterError.
func Transliterate(text string) (out string, changed bool, err error) {
	for _, r := range text {
		if unicode.IsControl(r) {
			return "", false, &InvalidCharacterError{Value: text, Char: r}
		}
	}
	if isASCII(text) {
		return text, false, nil
	}

	out = ligatures.Replace(text)
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err = transform.String(stripMarks, out)
	if err != nil {
		return "", false, &InvalidCharacterError{Value: text}
	}
	for _, r := range out {
		if r > unicode.MaxASCII {
			return "", false, &InvalidCharacterError{Value: text, Char: r}
		}
	}
	return out, true, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}
