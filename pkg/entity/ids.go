package entity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	objectIDPattern  = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	monthCodePattern = regexp.MustCompile(`(?i)^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)-\d{2}$`)
)

const monthCodeLayout = "Jan-06"

// ErrBadMonthCode is returned when a month code is not in MMM-YY form.
var ErrBadMonthCode = errors.New("entity: month code must look like MMM-YY (e.g. Jan-25)")

// ValidObjectID reports whether id is a 24 character hex identifier.
func ValidObjectID(id string) bool {
	return objectIDPattern.MatchString(id)
}

// ValidMonthCode reports whether s is a MMM-YY month code. Case is ignored.
func ValidMonthCode(s string) bool {
	return monthCodePattern.MatchString(strings.TrimSpace(s))
}

// NormalizeMonthCode returns the canonical "Jan-25" spelling of a month code.
func NormalizeMonthCode(s string) (string, error) {
	t, err := ParseMonthCode(s)
	if err != nil {
		return "", err
	}
	return t.Format(monthCodeLayout), nil
}

// ParseMonthCode parses a MMM-YY month code into the first day of that month.
func ParseMonthCode(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !ValidMonthCode(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadMonthCode, s)
	}
	canonical := strings.ToUpper(s[:1]) + strings.ToLower(s[1:3]) + s[3:]
	t, err := time.Parse(monthCodeLayout, canonical)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadMonthCode, s)
	}
	return t, nil
}
