package fieldcodec

import "strings"

// Delimiter separates tokens within one record line.
const Delimiter = ","

// BuildLine joins encoded tokens into one record line without a trailing
// delimiter or newline.
func BuildLine(tokens []string) string {
	return strings.Join(tokens, Delimiter)
}
