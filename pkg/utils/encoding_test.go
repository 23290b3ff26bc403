package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeUTF8PassesThrough(t *testing.T) {
	out, err := Encode(`"Ærø Købmand"`, EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, []byte(`"Ærø Købmand"`), out)
}

func TestEncodeWindows1252(t *testing.T) {
	out, err := Encode("Ærø €", EncodingWindows1252)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC6, 'r', 0xF8, ' ', 0x80}, out)
}

func TestEncodeISO88591(t *testing.T) {
	out, err := Encode("Straße", "latin1")
	require.NoError(t, err)
	assert.Equal(t, []byte{'S', 't', 'r', 'a', 0xDF, 'e'}, out)
}

func TestEncodeRejectsUnmappable(t *testing.T) {
	_, err := Encode("ok\nab€", EncodingISO88591)
	require.Error(t, err)

	var unmappable *UnmappableError
	require.ErrorAs(t, err, &unmappable)
	assert.Equal(t, '€', unmappable.Rune)
	assert.Equal(t, 2, unmappable.Line)
	assert.Equal(t, 3, unmappable.Column)
}

func TestEncodeUnknownEncoding(t *testing.T) {
	_, err := Encode("x", "EBCDIC")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported encoding "EBCDIC"`)
}

func TestIsSupportedEncoding(t *testing.T) {
	for _, name := range []string{"UTF-8", "utf8", "Windows-1252", "cp1252", "ISO-8859-1", "Latin1"} {
		assert.True(t, IsSupportedEncoding(name), name)
	}
	assert.False(t, IsSupportedEncoding("UTF-16"))
}
