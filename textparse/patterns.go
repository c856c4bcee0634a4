package textparse

import (
	"regexp"
	"strconv"
	"strings"
)

// Percentage patterns anchored to outcome vocabulary. Checked in order;
// the first match wins.
var percentagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)favorable\s+outcome[^\d]*(\d+)\s*%`),
	regexp.MustCompile(`(?i)likelihood\s+of\s+success[^\d]*(\d+)\s*%`),
	regexp.MustCompile(`(?i)probability[^\d]*(\d+)\s*%`),
	regexp.MustCompile(`(?i)chance\s+of\s+success[^\d]*(\d+)\s*%`),
	regexp.MustCompile(`(?i)(\d+)\s*%\s*chance`),
	regexp.MustCompile(`(?i)(\d+)\s*%\s*probability`),
	regexp.MustCompile(`(?i)(\d+)\s*%\s*likelihood`),
}

// ExtractPercentage recovers a favorable-outcome percentage from text,
// clamped to [0,100]. Defaults to 50 when no pattern matches.
func ExtractPercentage(text string) int {
	for _, pattern := range percentagePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if n < 0 {
				return 0
			}
			if n > 100 {
				return 100
			}
			return n
		}
	}
	return 50
}

// ExtractConfidenceLevel recovers a confidence keyword from text.
// Returns "high", "low", or the default "medium".
func ExtractConfidenceLevel(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "high confidence") || strings.Contains(lower, "strong confidence"):
		return "high"
	case strings.Contains(lower, "low confidence") || strings.Contains(lower, "weak confidence"):
		return "low"
	default:
		return "medium"
	}
}

var similarityPattern = regexp.MustCompile(`(?i)similarity score[:\s]*([0-9]*\.?[0-9]+)`)

// ExtractSimilarityScore recovers the first decimal number following the
// phrase "similarity score", clamped to [0,1]. Defaults to 0.5.
func ExtractSimilarityScore(text string) float64 {
	m := similarityPattern.FindStringSubmatch(text)
	if m == nil {
		return 0.5
	}
	score, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0.5
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

var firstPercent = regexp.MustCompile(`(\d+)\s*%`)

// FirstPercent returns the first "N%" figure in the text, or the supplied
// default when none is present.
func FirstPercent(text string, fallback int) int {
	m := firstPercent.FindStringSubmatch(text)
	if m == nil {
		return fallback
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return fallback
	}
	return n
}
