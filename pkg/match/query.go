package match

import (
	"regexp"
	"strings"
)

// Target-platform search relevance is sensitive to stray punctuation, so
// queries keep only letters, digits, whitespace, hyphen and ampersand.
var (
	queryStripRegex    = regexp.MustCompile(`[^\p{L}\p{N}\s&-]+`)
	queryCollapseRegex = regexp.MustCompile(`\s+`)
)

// SanitizeQuery normalizes a search query: characters outside the
// letter/digit/whitespace/hyphen/ampersand set are stripped and runs of
// whitespace collapse to a single space. Idempotent.
func SanitizeQuery(query string) string {
	s := queryStripRegex.ReplaceAllString(query, "")
	s = queryCollapseRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// BuildQuery constructs the target-platform search query for a source
// track: contributors in credit order, space-joined, followed by the
// title, then sanitized.
func BuildQuery(src Source) string {
	parts := make([]string, 0, len(src.Contributors)+1)
	parts = append(parts, src.Contributors...)
	parts = append(parts, src.Title)
	return SanitizeQuery(strings.Join(parts, " "))
}
