package sanitizer

const MinPhoneLength = 9

var phonePipeline = Pipeline{
	stripRunes(func(r rune) bool {
		return (r >= '0' && r <= '9') || r == '+'
	}),
}

// NormalizePhone keeps only digits and '+'. Results shorter than
// MinPhoneLength are treated as missing.
func NormalizePhone(phone string) *string {
	if phone == "" {
		return nil
	}

	cleaned := phonePipeline.Apply(phone)
	if len(cleaned) < MinPhoneLength {
		return nil
	}
	return &cleaned
}
