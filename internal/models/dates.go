// Package models defines data structures for pitfacts
package models

import (
	"strings"
	"time"
)

// DateLayout is the ISO date format used by SEC XBRL payloads.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// ParseDatePtr parses s, returning nil for empty or malformed input.
func ParseDatePtr(s string) *time.Time {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil
	}
	return &t
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDatePtr formats t, returning "" for nil.
func FormatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}
