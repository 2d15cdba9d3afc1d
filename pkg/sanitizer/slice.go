package sanitizer

import "strings"

// SplitCSV splits a comma separated selection, trimming each item and dropping
// empty ones. Order is preserved and duplicates are kept. Never returns nil.
func SplitCSV(s string) []string {
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		result = append(result, item)
	}
	return result
}
