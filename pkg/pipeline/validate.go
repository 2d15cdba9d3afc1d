package pipeline

import "deca/pkg/model"

// resolveAlias folds "Indique su título" into Nombre when the name itself is
// missing. The title is then not repeated under "Especificar otro título".
func resolveAlias(values map[string]any) {
	name := values[model.KeyNombre]
	title := values[model.KeyOtroTitulo]

	if name == nil && title != nil {
		values[model.KeyNombre] = title
		values[model.KeyOtroTitulo] = nil
	}
}

var required = []struct {
	key   string
	token string
}{
	{model.KeyEmail, ErrEmailMissing},
	{model.KeyNombre, ErrNameMissing},
	{model.KeyApellidos, ErrSurnameMissing},
	{model.KeyDNI, ErrDocumentMissing},
	{model.KeySubmittedOn, ErrSubmissionDateMissing},
}

// RequiredKeys lists the mandatory canonical keys in reporting order.
func RequiredKeys() []string {
	keys := make([]string, len(required))
	for i, r := range required {
		keys[i] = r.key
	}
	return keys
}

func requiredErrors(values map[string]any) []string {
	errs := []string{}
	for _, r := range required {
		if values[r.key] == nil {
			errs = append(errs, r.token)
		}
	}
	return errs
}
