package models

import "strings"

// UnitKind groups XBRL unit identifiers by how their values should be compared.
type UnitKind string

const (
	UnitMonetary   UnitKind = "monetary"
	UnitShares     UnitKind = "shares"
	UnitPerShare   UnitKind = "per_share"
	UnitPercentage UnitKind = "percentage"
	UnitOther      UnitKind = "other"
)

// ClassifyUnit maps a companyfacts unit key ("USD", "shares", "USD/shares", "pure") to its kind.
func ClassifyUnit(unit string) UnitKind {
	u := strings.TrimSpace(unit)
	lower := strings.ToLower(u)
	switch {
	case strings.Contains(lower, "/shares") || strings.Contains(lower, "/share"):
		return UnitPerShare
	case lower == "shares":
		return UnitShares
	case lower == "pure" || strings.Contains(lower, "%") || strings.Contains(lower, "percent"):
		return UnitPercentage
	case isCurrencyCode(u):
		return UnitMonetary
	default:
		return UnitOther
	}
}

// isCurrencyCode reports whether u looks like an ISO 4217 code (three upper-case letters).
func isCurrencyCode(u string) bool {
	if len(u) != 3 {
		return false
	}
	for _, r := range u {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
