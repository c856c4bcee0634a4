package textparse

import (
	"regexp"
	"strings"
)

var bulletPrefix = regexp.MustCompile(`^[-*]\s*|^\d+\.\s*`)

// ExtractBulletPoints returns the items of any bulleted or numbered list in
// the text. A line counts as an item when it begins with "-", "*", or
// "<integer>."; the prefix is stripped and the item trimmed. Blank lines are
// skipped. Returns an empty slice when no bulleted lines exist.
func ExtractBulletPoints(text string) []string {
	points := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !bulletPrefix.MatchString(line) {
			continue
		}
		point := strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if point != "" {
			points = append(points, point)
		}
	}
	return points
}

// ExtractSectionBulletPoints restricts bullet extraction to a named section.
// When endMarker is empty the section runs until the first blank-line gap or
// the end of the text.
func ExtractSectionBulletPoints(text, sectionName, endMarker string) []string {
	var section string
	if endMarker != "" {
		section = ExtractSection(text, sectionName, endMarker)
	} else {
		section = ExtractSection(text, sectionName, "")
		if idx := strings.Index(section, "\n\n"); idx >= 0 {
			section = section[:idx]
		}
	}
	return ExtractBulletPoints(section)
}
