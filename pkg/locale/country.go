package locale

type Country struct {
	Code          string   // ISO 3166-1 alpha-2 region code (e.g., "ES", "PT")
	Name          string   // Human-readable country name
	PhonePrefixes []string // International calling prefixes (e.g., ["+34", "0034"])
}

// Countries lists the regions enrolments usually come from.
var Countries = map[string]Country{
	"ES": {Code: "ES", Name: "España", PhonePrefixes: []string{"+34", "0034"}},
	"PT": {Code: "PT", Name: "Portugal", PhonePrefixes: []string{"+351", "00351"}},
	"AD": {Code: "AD", Name: "Andorra", PhonePrefixes: []string{"+376", "00376"}},
	"FR": {Code: "FR", Name: "Francia", PhonePrefixes: []string{"+33", "0033"}},
	"IT": {Code: "IT", Name: "Italia", PhonePrefixes: []string{"+39", "0039"}},
	"DE": {Code: "DE", Name: "Alemania", PhonePrefixes: []string{"+49", "0049"}},
	"GB": {Code: "GB", Name: "Reino Unido", PhonePrefixes: []string{"+44", "0044"}},
	"MA": {Code: "MA", Name: "Marruecos", PhonePrefixes: []string{"+212", "00212"}},
	"AR": {Code: "AR", Name: "Argentina", PhonePrefixes: []string{"+54", "0054"}},
	"MX": {Code: "MX", Name: "México", PhonePrefixes: []string{"+52", "0052"}},
	"CO": {Code: "CO", Name: "Colombia", PhonePrefixes: []string{"+57", "0057"}},
}
