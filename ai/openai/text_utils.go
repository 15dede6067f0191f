package openai

import "strings"

// collapseWhitespace folds runs of whitespace into single spaces and trims
// the result. Queries arrive from chat inputs and often carry stray newlines
// that skew prompt formatting.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
