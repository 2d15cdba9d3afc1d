package sanitizer

import "testing"

func ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestNormalizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *string
	}{
		{
			name:  "collapse and trim",
			input: " a  b ",
			want:  ptr("a b"),
		},
		{
			name:  "tabs and newlines",
			input: "Calle\t\nMayor",
			want:  ptr("Calle Mayor"),
		},
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  nil,
		},
		{
			name:  "non-breaking space counts as whitespace",
			input: "José\u00a0 Luis",
			want:  ptr("José Luis"),
		},
		{
			name:  "accents preserved",
			input: "  Población  ",
			want:  ptr("Población"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeString(tt.input)
			if deref(got) != deref(tt.want) {
				t.Errorf("NormalizeString(%q) = %q, want %q", tt.input, deref(got), deref(tt.want))
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *string
	}{
		{name: "lowercase and trim", input: "Foo@BAR.com ", want: ptr("foo@bar.com")},
		{name: "blank", input: "  ", want: nil},
		{name: "empty", input: "", want: nil},
		{name: "no syntax check", input: "Not An Email", want: ptr("not an email")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeEmail(tt.input)
			if deref(got) != deref(tt.want) {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, deref(got), deref(tt.want))
			}
		})
	}
}

func TestNormalizeSexo(t *testing.T) {
	tests := []struct {
		input string
		want  *string
	}{
		{input: "Hombre", want: ptr("Masculino")},
		{input: "HOMBRE", want: ptr("Masculino")},
		{input: " Mujer ", want: ptr("Femenino")},
		{input: "MUJER", want: ptr("Femenino")},
		{input: "Otro", want: ptr("Otro")},
		{input: "hombre", want: ptr("hombre")},
		{input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeSexo(tt.input)
			if deref(got) != deref(tt.want) {
				t.Errorf("NormalizeSexo(%q) = %q, want %q", tt.input, deref(got), deref(tt.want))
			}
		})
	}
}

func TestNormalizeDNI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *string
	}{
		{name: "hyphen removed", input: "12345678-Z", want: ptr("12345678Z")},
		{name: "spaces removed and uppercased", input: " x 1234567 l ", want: ptr("X1234567L")},
		{name: "empty", input: "", want: nil},
		{name: "only separators", input: " - ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDNI(tt.input)
			if deref(got) != deref(tt.want) {
				t.Errorf("NormalizeDNI(%q) = %q, want %q", tt.input, deref(got), deref(tt.want))
			}
		})
	}
}
