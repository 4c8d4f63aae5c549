// Package strings holds small string-slice helpers shared by the services.
package strings

import (
	"strings"
)

// DedupeAndTrim trims whitespace, drops empty entries, and removes duplicates
// while preserving order. The submit gate runs doc-type lists through it
// before comparing, so a catalog row with stray whitespace cannot desync the
// required and uploaded sets.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}
