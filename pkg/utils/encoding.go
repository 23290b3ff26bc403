// =============================================================================
// Bank Payment Generator - Output Encoding
// =============================================================================
//
// Generated files are built as UTF-8 text. Banks that still read legacy
// code pages get the content re-encoded here. A character the target code
// page cannot represent is an error; it is never replaced.
//
// =============================================================================

package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Supported output encodings.
const (
	EncodingUTF8        = "UTF-8"
	EncodingWindows1252 = "Windows-1252"
	EncodingISO88591    = "ISO-8859-1"
)

var charmaps = map[string]*charmap.Charmap{
	strings.ToUpper(EncodingWindows1252): charmap.Windows1252,
	"CP1252":                             charmap.Windows1252,
	strings.ToUpper(EncodingISO88591):    charmap.ISO8859_1,
	"LATIN1":                             charmap.ISO8859_1,
}

// UnmappableError reports a character the target encoding cannot represent.
type UnmappableError struct {
	Encoding string
	Rune     rune
	Line     int
	Column   int
}

func (e *UnmappableError) Error() string {
	return fmt.Sprintf("character %q at line %d, column %d cannot be encoded as %s", e.Rune, e.Line, e.Column, e.Encoding)
}

// IsSupportedEncoding reports whether name is an encoding Encode accepts.
func IsSupportedEncoding(name string) bool {
	if isUTF8(name) {
		return true
	}
	_, ok := charmaps[strings.ToUpper(name)]
	return ok
}

func isUTF8(name string) bool {
	switch strings.ToUpper(name) {
	case "", "UTF-8", "UTF8":
		return true
	}
	return false
}

// Encode converts UTF-8 content into the named encoding.
func Encode(content, encoding string) ([]byte, error) {
	if isUTF8(encoding) {
		if !utf8.ValidString(content) {
			return nil, fmt.Errorf("content is not valid UTF-8")
		}
		return []byte(content), nil
	}

	cm, ok := charmaps[strings.ToUpper(encoding)]
	if !ok {
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}

	out := make([]byte, 0, len(content))
	line, column := 1, 0
	for _, r := range content {
		column++
		b, ok := cm.EncodeRune(r)
		if !ok {
			return nil, &UnmappableError{Encoding: encoding, Rune: r, Line: line, Column: column}
		}
		out = append(out, b)
		if r == '\n' {
			line++
			column = 0
		}
	}

	return out, nil
}
