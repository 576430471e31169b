// Package dates provides parsing of heterogeneous admissions-deadline strings
// and deadline arithmetic.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Accepted layouts, tried in this order. The 4-digit-leading ISO form is tried
// first because it is structurally unambiguous; trying MM-DD-YYYY first could
// misattribute the digit groups of an ISO date.
const (
	layoutISO = "2006-01-02"
	layoutUS  = "01-02-2006"
)

// MalformedDateError indicates a deadline string that is empty or matches none
// of the accepted formats (YYYY-MM-DD, MM-DD-YYYY, MM/DD).
type MalformedDateError struct {
	Input string
	Cause error
}

func (e *MalformedDateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed date %q: supported formats are YYYY-MM-DD, MM-DD-YYYY, MM/DD: %v", e.Input, e.Cause)
	}
	return fmt.Sprintf("malformed date %q: supported formats are YYYY-MM-DD, MM-DD-YYYY, MM/DD", e.Input)
}

func (e *MalformedDateError) Unwrap() error {
	return e.Cause
}

// ParseDeadline parses a deadline string into a calendar date (midnight UTC).
// The MM/DD form carries no year: defaultYear is used when non-zero, otherwise
// the current year.
func ParseDeadline(text string, defaultYear int) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, &MalformedDateError{Input: text}
	}

	if t, err := time.Parse(layoutISO, text); err == nil {
		return t, nil
	}

	if t, err := time.Parse(layoutUS, text); err == nil {
		return t, nil
	}

	if parts := strings.Split(text, "/"); len(parts) == 2 {
		month, merr := strconv.Atoi(strings.TrimSpace(parts[0]))
		day, derr := strconv.Atoi(strings.TrimSpace(parts[1]))
		if merr == nil && derr == nil {
			year := defaultYear
			if year == 0 {
				year = time.Now().Year()
			}
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			// time.Date normalizes out-of-range components (e.g. 2/30
			// becomes 3/1 or 3/2); reject anything that moved.
			if int(t.Month()) == month && t.Day() == day {
				return t, nil
			}
		}
		return time.Time{}, &MalformedDateError{Input: text}
	}

	return time.Time{}, &MalformedDateError{Input: text}
}

// DaysUntil returns the whole days from now (truncated to midnight) until the
// deadline, floored at zero. The second return is false when text is empty or
// unparsable: a school without a known regular decision date is a valid state,
// not an error.
func DaysUntil(text string, now time.Time) (int, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}

	deadline, err := ParseDeadline(text, now.Year())
	if err != nil {
		return 0, false
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(deadline.Sub(midnight).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days, true
}
