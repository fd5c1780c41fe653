package common

import "time"

// Freshness TTLs for cached provider data
const (
	// Company metadata (SIC code, name) changes rarely.
	FreshnessCompanyMetadata = 7 * 24 * time.Hour
	// The SEC ticker map is republished daily.
	FreshnessTickerMap = 24 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
