// Package narration turns an invoice's free-text narration into the
// notification lines printed on the recipient's bank statement.
//
// Narration usually arrives as HTML from a rich-text editor. Block elements
// and <br> end a paragraph; blank paragraphs are dropped.
package narration

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// MaxLines is the number of notification text slots in a record.
	MaxLines = 5

	// MaxLineLength is the width of one notification text slot.
	MaxLineLength = 35
)

// LimitError reports narration that does not fit the notification slots.
// Paragraph is 1-based and zero when the paragraph count is the problem.
type LimitError struct {
	Paragraphs int
	Paragraph  int
	Length     int
}

func (e *LimitError) Error() string {
	if e.Paragraph == 0 {
		return fmt.Sprintf("narration has %d paragraphs, at most %d allowed", e.Paragraphs, MaxLines)
	}
	return fmt.Sprintf("narration paragraph %d is %d characters long, at most %d allowed", e.Paragraph, e.Length, MaxLineLength)
}

// Lines splits narration into exactly MaxLines notification lines. Unused
// lines are empty. When narration holds no text, the first line is fallback.
func Lines(narration, fallback string) ([MaxLines]string, error) {
	var lines [MaxLines]string

	paragraphs := Paragraphs(narration)
	if len(paragraphs) == 0 {
		lines[0] = fallback
		return lines, nil
	}

	if len(paragraphs) > MaxLines {
		return lines, &LimitError{Paragraphs: len(paragraphs)}
	}

	for i, p := range paragraphs {
		if n := utf8.RuneCountInString(p); n > MaxLineLength {
			return lines, &LimitError{Paragraphs: len(paragraphs), Paragraph: i + 1, Length: n}
		}
		lines[i] = p
	}

	return lines, nil
}

// Paragraphs returns the non-blank paragraphs of narration in order.
func Paragraphs(narration string) []string {
	isHTML := strings.ContainsRune(narration, '<')
	text := narration
	if isHTML {
		text = plainText(narration)
	}

	var paragraphs []string
	for _, line := range strings.Split(text, "\n") {
		if isHTML {
			line = strings.Join(strings.Fields(line), " ")
		}
		line = strings.TrimSpace(line)
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return paragraphs
}

// blockElements end the current paragraph when they open or close.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.Ul: true, atom.Ol: true, atom.Tr: true, atom.Table: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Blockquote: true, atom.Pre: true,
}

// plainText renders an HTML fragment as text with one paragraph per line.
// Text that is not valid HTML is still tokenized leniently by the parser.
func plainText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			// Source newlines inside a text node are layout, not paragraphs.
			b.WriteString(strings.NewReplacer("\r", " ", "\n", " ").Replace(n.Data))
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
			if blockElements[n.DataAtom] {
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			b.WriteByte('\n')
		}
	}
	walk(doc)

	return b.String()
}
