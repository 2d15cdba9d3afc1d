package sanitizer

import "strings"

var (
	textPipeline = Pipeline{
		strings.TrimSpace,
		collapseWhitespace,
	}

	sexoValues = map[string]string{
		"Hombre": "Masculino",
		"HOMBRE": "Masculino",
		"Mujer":  "Femenino",
		"MUJER":  "Femenino",
	}
)

// NormalizeString trims s and collapses internal whitespace runs to one space.
// Blank input yields nil.
func NormalizeString(s string) *string {
	return optional(textPipeline.Apply(s))
}

func NormalizeEmail(s string) *string {
	normalized := NormalizeString(s)
	if normalized == nil {
		return nil
	}
	return optional(strings.ToLower(*normalized))
}

// NormalizeSexo maps the form's Hombre/Mujer spellings onto the target
// enumeration and passes any other value through unchanged.
func NormalizeSexo(s string) *string {
	normalized := NormalizeString(s)
	if normalized == nil {
		return nil
	}
	if mapped, ok := sexoValues[*normalized]; ok {
		return &mapped
	}
	return normalized
}
