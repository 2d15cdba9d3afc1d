package locale

import "strings"

// InferCountryFromPhone matches an internationally prefixed number against
// Countries, longest prefix first. National numbers have no country and yield nil.
func InferCountryFromPhone(phone string) *Country {
	normalized := strings.TrimSpace(phone)
	if !strings.HasPrefix(normalized, "+") && !strings.HasPrefix(normalized, "00") {
		return nil
	}

	var best *Country
	bestLen := 0
	for code := range Countries {
		country := Countries[code]
		for _, prefix := range country.PhonePrefixes {
			if len(prefix) > bestLen && strings.HasPrefix(normalized, prefix) {
				best = &country
				bestLen = len(prefix)
			}
		}
	}
	return best
}

// InferRegion returns the region code for phone, or fallback when none matches.
func InferRegion(phone, fallback string) string {
	if country := InferCountryFromPhone(phone); country != nil {
		return country.Code
	}
	return fallback
}
