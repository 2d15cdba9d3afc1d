package sanitizer

import (
	"strings"
	"unicode"
)

var documentPipeline = Pipeline{
	stripRunes(func(r rune) bool {
		return !unicode.IsSpace(r) && r != '-'
	}),
	strings.ToUpper,
}

// NormalizeDNI canonicalizes a DNI, NIE or passport number: "12345678-z"
// becomes "12345678Z". No syntax check happens here.
func NormalizeDNI(dni string) *string {
	if dni == "" {
		return nil
	}
	return optional(documentPipeline.Apply(dni))
}
