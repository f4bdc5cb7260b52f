package app

import (
	"regexp"
	"strings"
)

// Span attributes have a soft size budget; long IN-lists and batch inserts
// get truncated rather than bloating every DB span.
const maxTracedQueryLength = 512

var collapseWhitespace = regexp.MustCompile(`\s+`)

func formatDBQueryForTrace(query string) string {
	normalized := collapseWhitespace.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(normalized) > maxTracedQueryLength {
		return normalized[:maxTracedQueryLength] + "..."
	}

	return normalized
}
