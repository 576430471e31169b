// Package fetch - deadline.go extracts application deadlines from admissions
// page content.
package fetch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var monthNumbers = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may":  5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sept": 9, "sep": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

var (
	isoDatePattern     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	monthNamePattern   = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|sept|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?`)
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}))?\b`)
)

// ExtractDeadline scans admissions page HTML for a regular decision deadline.
// The returned string is in one of the formats the dates package accepts:
// YYYY-MM-DD when a year was found, MM/DD otherwise. Returns false when no
// deadline-bearing date appears.
func ExtractDeadline(html string) (string, bool) {
	text, err := ExtractMainText(html, AdmissionsPageSelectors())
	if err != nil {
		return "", false
	}

	lines := strings.Split(text, "\n")

	// Regular decision lines win over generic deadline lines.
	for _, keywords := range [][]string{
		{"regular decision", "regular admission"},
		{"deadline", "applications due", "apply by"},
	} {
		for _, line := range lines {
			lower := strings.ToLower(line)
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					if date, ok := dateFromLine(line); ok {
						return date, true
					}
				}
			}
		}
	}
	return "", false
}

func dateFromLine(line string) (string, bool) {
	if m := isoDatePattern.FindStringSubmatch(line); m != nil {
		return m[0], true
	}

	if m := monthNamePattern.FindStringSubmatch(line); m != nil {
		month, ok := monthNumbers[strings.ToLower(m[1])]
		day, err := strconv.Atoi(m[2])
		if ok && err == nil {
			if m[3] != "" {
				return fmt.Sprintf("%s-%02d-%02d", m[3], month, day), true
			}
			return fmt.Sprintf("%d/%d", month, day), true
		}
	}

	if m := numericDatePattern.FindStringSubmatch(line); m != nil {
		month, merr := strconv.Atoi(m[1])
		day, derr := strconv.Atoi(m[2])
		if merr == nil && derr == nil {
			if m[3] != "" {
				return fmt.Sprintf("%02d-%02d-%s", month, day, m[3]), true
			}
			return fmt.Sprintf("%d/%d", month, day), true
		}
	}

	return "", false
}
