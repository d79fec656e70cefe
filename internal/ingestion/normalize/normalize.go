// Package normalize implements the deterministic content normalization
// from spec §4.4: strip HTML/control characters, collapse whitespace,
// normalize Unicode to NFC, and preserve case (hashing is case-sensitive).
// Grounded on the teacher's internal/text.ChunkMarkdown regex-driven
// approach to text processing, adapted from chunking to normalization.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	controlCharPattern = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	whitespacePattern = regexp.MustCompile(`[ \t\r\n]+`)
	// boilerplatePatterns are common chrome the source pack's pipelines
	// strip before persisting: cookie banners, subscribe nags, and share
	// bars that add no semantic content.
	boilerplatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)subscribe to our newsletter[^.]*\.`),
		regexp.MustCompile(`(?i)share this (article|post) on [^.]*\.`),
		regexp.MustCompile(`(?i)this (site|website) uses cookies[^.]*\.`),
	}
)

// Normalize applies the full deterministic pipeline and returns the
// normalized text. Case is preserved: lowercasing would change the
// resulting content hash and is explicitly not configured on.
func Normalize(raw string) string {
	s := htmlTagPattern.ReplaceAllString(raw, " ")
	s = controlCharPattern.ReplaceAllString(s, "")
	for _, p := range boilerplatePatterns {
		s = p.ReplaceAllString(s, "")
	}
	s = norm.NFC.String(s)
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
