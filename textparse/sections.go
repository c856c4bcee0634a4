// Package textparse provides the parsing primitives used to recover
// structured data from free-form language model replies. Every function in
// this package is total: pattern misses yield a documented default, never
// an error. Model prose is unreliable by nature and absence of a marker is
// a normal outcome.
package textparse

import "strings"

// ExtractSection returns the text strictly between the first case-insensitive
// occurrence of startMarker and the first occurrence of endMarker after it.
// An empty endMarker means the section runs to the end of the text. The
// marker's own label (plus any ":" and surrounding whitespace) is stripped
// from the front. Returns "" when startMarker is not found.
func ExtractSection(text, startMarker, endMarker string) string {
	lower := strings.ToLower(text)
	start := strings.Index(lower, strings.ToLower(startMarker))
	if start < 0 {
		return ""
	}

	section := text[start:]
	if endMarker != "" {
		rest := strings.ToLower(section[len(startMarker):])
		if end := strings.Index(rest, strings.ToLower(endMarker)); end >= 0 {
			section = section[:len(startMarker)+end]
		}
	}

	// Strip the header label itself
	section = section[len(startMarker):]
	section = strings.TrimLeft(section, ":** \t")
	return strings.TrimSpace(section)
}

// FirstParagraphContaining splits text on blank lines and returns the first
// paragraph containing any of the given substrings (case-insensitive).
// Returns "" when no paragraph matches.
func FirstParagraphContaining(text string, substrings ...string) string {
	for _, part := range strings.Split(text, "\n\n") {
		lower := strings.ToLower(part)
		for _, sub := range substrings {
			if strings.Contains(lower, strings.ToLower(sub)) {
				return strings.TrimSpace(part)
			}
		}
	}
	return ""
}
