package fields

import (
	"regexp"
	"sort"
	"strings"

	"github.com/bobmcallan/pitfacts/internal/models"
)

var deprecatedSincePattern = regexp.MustCompile(`(?i)deprecated\s+(\d{4}-\d{2}-\d{2})`)

// DetectDeprecated returns fields whose label or description mentions "deprecated",
// ordered by field name. The taxonomy's "Deprecated YYYY-MM-DD" marker sets DeprecatedSince.
func DetectDeprecated(entries []models.FieldCatalogEntry) []models.DeprecatedField {
	var out []models.DeprecatedField
	for _, e := range entries {
		text := e.Label + " " + e.Description
		if !strings.Contains(strings.ToLower(text), "deprecated") {
			continue
		}
		df := models.DeprecatedField{FieldName: e.FieldName, Label: e.Label}
		if m := deprecatedSincePattern.FindStringSubmatch(text); m != nil {
			df.DeprecatedSince = models.ParseDatePtr(m[1])
		}
		out = append(out, df)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldName < out[j].FieldName })
	return out
}

// DeprecatedSet indexes deprecated fields by name.
func DeprecatedSet(fields []models.DeprecatedField) map[string]bool {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f.FieldName] = true
	}
	return set
}
