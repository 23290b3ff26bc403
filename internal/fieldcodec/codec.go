// =============================================================================
// Bank Payment Generator - Field Codec
// =============================================================================
//
// Encode turns one raw value into one quoted, fixed-width token.
//
// ENCODING RULES:
//   text    : right-pad with spaces, or keep the first Width characters
//   numeric : digits only, left-pad with zeros, or keep the first Width digits
//   signed  : numeric tokens may carry one trailing '+' inside the quotes
//
// Overlong values are truncated silently, keeping the leading characters.
// Widths count characters (runes), not bytes.
//
// =============================================================================

package fieldcodec

import (
	"strings"
	"unicode/utf8"
)

const (
	quote    = `"`
	signPlus = "+"
)

// Encode encodes raw into the token for field name.
func (t *RuleTable) Encode(name, raw string, signed bool) (string, error) {
	rule, ok := t.rules[name]
	if !ok {
		return "", &UnknownFieldError{Name: name}
	}

	return rule.Encode(raw, signed)
}

// Blank encodes the empty value for field name.
func (t *RuleTable) Blank(name string) (string, error) {
	return t.Encode(name, "", false)
}

// Encode encodes raw according to the rule.
func (r Rule) Encode(raw string, signed bool) (string, error) {
	var body string

	switch r.Kind {
	case KindNumeric:
		if !isDigits(raw) {
			return "", &InvalidValueError{Field: r.Name, Value: raw, Reason: "value is not a non-negative integer"}
		}
		body = PadLeft(Truncate(raw, r.Width), r.Width, '0')
		if signed {
			body += signPlus
		}

	case KindText:
		if signed {
			return "", &InvalidValueError{Field: r.Name, Value: raw, Reason: "text fields cannot be signed"}
		}
		if strings.ContainsAny(raw, "\r\n"+quote) {
			return "", &InvalidValueError{Field: r.Name, Value: raw, Reason: "value contains a line break or a double quote"}
		}
		body = PadRight(Truncate(raw, r.Width), r.Width, ' ')

	default:
		return "", &InvalidValueError{Field: r.Name, Value: raw, Reason: "unknown kind " + string(r.Kind)}
	}

	return quote + body + quote, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Truncate keeps the first width characters of s.
func Truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width])
}

// PadLeft pads s on the left with padChar up to length characters.
func PadLeft(s string, length int, padChar rune) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-n) + s
}

// PadRight pads s on the right with padChar up to length characters.
func PadRight(s string, length int, padChar rune) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return s + strings.Repeat(string(padChar), length-n)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
