// Package scoring extracts overall rubric scores from model-generated
// evaluations. Evaluations are free text, so extraction is layered:
// an explicit machine-readable line first, then progressively looser
// matching over the summary wording.
package scoring

import (
	"regexp"
	"strconv"
	"strings"
)

// Stored sentinel values for records whose evaluation yielded no score.
const (
	NotFound   = "Not Found"
	ParseError = "Parse Error"
)

var ratingWords = map[string]string{
	"needs development": "1",
	"proficient":        "3",
	"exemplary":         "4",
}

var (
	explicitRe = regexp.MustCompile(`(?m)^OVERALL_SCORE\s*:\s*([1-4])\b`)
	summaryRe  = regexp.MustCompile(`overall\s+(?:score|assessment|rating)[^0-9]*([1-4])`)
	windowedRe = regexp.MustCompile(`(?i)overall[^\n]{0,60}(needs development|proficient|exemplary)`)
)

// Parse pulls the overall score out of an evaluation. It returns the
// digit as a string ("1" through "4") and false when no score signal
// is present.
func Parse(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	if m := explicitRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}

	for _, line := range strings.Split(text, "\n") {
		cleaned := strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		lower := strings.ToLower(cleaned)

		if !strings.Contains(lower, "overall") {
			continue
		}
		// Skip the rubric instructions echoed back by the model.
		if strings.Contains(lower, "using the rubric") || strings.Contains(lower, "provide") {
			continue
		}

		if strings.Contains(lower, "overall score") ||
			strings.Contains(lower, "overall assessment") ||
			strings.Contains(lower, "overall rating") {
			if m := summaryRe.FindStringSubmatch(lower); m != nil {
				return m[1], true
			}
			for word, digit := range ratingWords {
				if strings.Contains(lower, word) {
					return digit, true
				}
			}
		}
	}

	if m := windowedRe.FindStringSubmatch(text); m != nil {
		return ratingWords[strings.ToLower(m[1])], true
	}

	return "", false
}

// ExtractLine is the extraction applied at submission time: the value
// after the first colon on the first "Overall Score:" line, verbatim.
// Later repair passes use Parse to clean these up.
func ExtractLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "Overall Score:") {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) < 2 {
			return ParseError
		}
		return strings.TrimSpace(parts[1])
	}
	return NotFound
}

// IsValid reports whether a stored score is a plain integer 1 through 4.
func IsValid(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 4
}

// Numeric converts a stored score to an int for reporting, tolerating
// decorated values by falling back to the first digit found. The second
// return is false when the value holds no digit at all.
func Numeric(value string) (int, bool) {
	trimmed := strings.TrimSpace(value)
	if n, err := strconv.Atoi(trimmed); err == nil && n >= 0 {
		return n, true
	}
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			return int(r - '0'), true
		}
	}
	return 0, false
}
