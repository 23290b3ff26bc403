package narration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraphsPlainText(t *testing.T) {
	got := Paragraphs("first line\n\n  second line  \nthird")
	assert.Equal(t, []string{"first line", "second line", "third"}, got)
}

func TestParagraphsHTML(t *testing.T) {
	got := Paragraphs("<p>Pay within <b>8 days</b></p><p>Ref &amp; order 42</p><div>line<br>break</div>")
	assert.Equal(t, []string{"Pay within 8 days", "Ref & order 42", "line", "break"}, got)
}

func TestParagraphsHTMLIgnoresSourceNewlines(t *testing.T) {
	got := Paragraphs("<p>one\n   two</p>\n<p></p><p>  </p>")
	assert.Equal(t, []string{"one two"}, got)
}

func TestParagraphsEmpty(t *testing.T) {
	assert.Empty(t, Paragraphs(""))
	assert.Empty(t, Paragraphs("<p><br></p>"))
	assert.Empty(t, Paragraphs("   \n \n"))
}

func TestLinesFiveParagraphsInOrder(t *testing.T) {
	lines, err := Lines("a\nb\nc\nd\n"+strings.Repeat("e", MaxLineLength), "BILL/1")
	require.NoError(t, err)
	assert.Equal(t, [MaxLines]string{"a", "b", "c", "d", strings.Repeat("e", MaxLineLength)}, lines)
}

func TestLinesFallback(t *testing.T) {
	lines, err := Lines("", "BILL/2024/0001")
	require.NoError(t, err)
	assert.Equal(t, [MaxLines]string{"BILL/2024/0001", "", "", "", ""}, lines)
}

func TestLinesTooManyParagraphs(t *testing.T) {
	_, err := Lines("1\n2\n3\n4\n5\n6", "x")
	require.Error(t, err)

	var limit *LimitError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, 6, limit.Paragraphs)
	assert.Equal(t, 0, limit.Paragraph)
}

func TestLinesParagraphTooLong(t *testing.T) {
	_, err := Lines("ok\n"+strings.Repeat("x", MaxLineLength+1), "x")
	require.Error(t, err)

	var limit *LimitError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, 2, limit.Paragraph)
	assert.Equal(t, MaxLineLength+1, limit.Length)
}

func TestLinesCountsCharacters(t *testing.T) {
	_, err := Lines(strings.Repeat("ø", MaxLineLength), "x")
	assert.NoError(t, err)
}
