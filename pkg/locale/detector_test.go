package locale

import "testing"

func TestInferCountryFromPhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		wantCode string
		wantNil  bool
	}{
		{name: "spain plus", phone: "+34600123456", wantCode: "ES"},
		{name: "spain double zero", phone: "0034600123456", wantCode: "ES"},
		{name: "portugal", phone: "+351912345678", wantCode: "PT"},
		{name: "morocco", phone: "+212612345678", wantCode: "MA"},
		{name: "surrounding spaces", phone: "  +33612345678 ", wantCode: "FR"},
		{name: "national number", phone: "600123456", wantNil: true},
		{name: "national number starting with country digits", phone: "34600123456", wantNil: true},
		{name: "unknown prefix", phone: "+81312345678", wantNil: true},
		{name: "empty phone", phone: "", wantNil: true},
		{name: "invalid phone", phone: "not-a-phone", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferCountryFromPhone(tt.phone)
			if tt.wantNil {
				if got != nil {
					t.Errorf("InferCountryFromPhone(%q) = %v, want nil", tt.phone, got.Code)
				}
				return
			}
			if got == nil {
				t.Fatalf("InferCountryFromPhone(%q) = nil, want %s", tt.phone, tt.wantCode)
			}
			if got.Code != tt.wantCode {
				t.Errorf("InferCountryFromPhone(%q) = %s, want %s", tt.phone, got.Code, tt.wantCode)
			}
		})
	}
}

func TestInferRegion(t *testing.T) {
	tests := []struct {
		phone    string
		fallback string
		want     string
	}{
		{phone: "+351912345678", fallback: "ES", want: "PT"},
		{phone: "912345678", fallback: "ES", want: "ES"},
		{phone: "", fallback: "PT", want: "PT"},
	}

	for _, tt := range tests {
		if got := InferRegion(tt.phone, tt.fallback); got != tt.want {
			t.Errorf("InferRegion(%q, %q) = %q, want %q", tt.phone, tt.fallback, got, tt.want)
		}
	}
}

func TestCountries_PrefixesAreInternational(t *testing.T) {
	for code, c := range Countries {
		if c.Code != code {
			t.Errorf("Countries[%q].Code = %q", code, c.Code)
		}
		for _, p := range c.PhonePrefixes {
			if p[0] != '+' && p[:2] != "00" {
				t.Errorf("Countries[%q] prefix %q is not international", code, p)
			}
		}
	}
}
