// Package mapper turns inbound payloads into raw submissions. Keys may be raw
// field names, spreadsheet column labels or form-automation labels carrying a
// step prefix ("3. Correo Electrónico"); matching ignores case, accents,
// spacing and the step prefix.
package mapper

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"unicode"

	apperrors "deca/pkg/errors"
	"deca/pkg/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	PayloadKey      = "payload"
	SubmissionIDKey = "submissionId"
)

var stepPrefix = regexp.MustCompile(`^\d+\s*\.\s*`)

// extraLabels are spellings that are neither a raw name nor a canonical key.
var extraLabels = map[string]string{
	"Indique su título":   model.FieldIndiqueTitulo,
	"Correo":              model.FieldEmail,
	"Email":               model.FieldEmail,
	"DNI":                 model.FieldDNI,
	"Teléfono":            model.FieldTelefono,
	"Submitted On":        model.FieldSubmittedOn,
	"Selección de módulo": model.FieldSeleccionModulos,
}

// Result is a mapped payload.
type Result struct {
	Raw model.RawSubmission
	// SubmissionID is the upstream identifier when the sender supplied one.
	SubmissionID string
	// Unmapped lists payload keys that matched no field, sorted.
	Unmapped []string
}

type Mapper struct {
	labels map[string]string
	raw    map[string]bool
}

func New() *Mapper {
	m := &Mapper{
		labels: make(map[string]string),
		raw:    make(map[string]bool, len(model.RawFields)),
	}
	for _, f := range model.RawFields {
		m.raw[f] = true
		m.labels[Fold(f)] = f
	}
	for _, spec := range model.Schema {
		m.labels[Fold(spec.Key)] = spec.Raw
	}
	for label, field := range extraLabels {
		m.labels[Fold(label)] = field
	}
	return m
}

// Field resolves a payload key to a raw field name.
func (m *Mapper) Field(key string) (string, bool) {
	if m.raw[key] {
		return key, true
	}
	field, ok := m.labels[Fold(key)]
	return field, ok
}

// Map resolves every key of payload. A "payload" member, given as an object
// or as a JSON string, replaces the outer object. Exact raw names win over
// labels; among labels the first non-empty value in key order wins.
func (m *Mapper) Map(payload map[string]any) (*Result, error) {
	inner, err := unwrap(payload)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Raw:          make(model.RawSubmission, len(model.RawFields)),
		SubmissionID: submissionID(payload, inner),
	}

	exact := make(map[string]any)
	labelled := make(map[string][]any)
	for _, key := range sortedKeys(inner) {
		if key == SubmissionIDKey {
			continue
		}
		field, ok := m.Field(key)
		switch {
		case !ok:
			res.Unmapped = append(res.Unmapped, key)
		case key == field:
			exact[field] = inner[key]
		default:
			labelled[field] = append(labelled[field], inner[key])
		}
	}

	for _, field := range model.RawFields {
		value, ok := pick(field, exact, labelled[field])
		if ok {
			res.Raw[field] = value
		}
	}
	return res, nil
}

// pick prefers a non-empty exact value, then the first non-empty labelled one.
// Empty values are kept only when nothing better exists.
func pick(field string, exact map[string]any, labelled []any) (any, bool) {
	present := func(v any) bool {
		return model.RawSubmission{field: v}.Value(field) != ""
	}

	ev, hasExact := exact[field]
	if hasExact && present(ev) {
		return ev, true
	}
	for _, v := range labelled {
		if present(v) {
			return v, true
		}
	}
	if hasExact {
		return ev, true
	}
	if len(labelled) > 0 {
		return labelled[0], true
	}
	return nil, false
}

func unwrap(payload map[string]any) (map[string]any, error) {
	wrapped, ok := payload[PayloadKey]
	if !ok || wrapped == nil {
		return payload, nil
	}

	switch v := wrapped.(type) {
	case map[string]any:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return payload, nil
		}
		dec := json.NewDecoder(bytes.NewReader([]byte(v)))
		dec.UseNumber()
		var inner map[string]any
		if err := dec.Decode(&inner); err != nil || inner == nil {
			return nil, apperrors.InvalidInput("payload member is not a JSON object")
		}
		return inner, nil
	default:
		return nil, apperrors.InvalidInput("payload member must be an object or a JSON string")
	}
}

func submissionID(outer, inner map[string]any) string {
	for _, src := range []map[string]any{outer, inner} {
		if id := (model.RawSubmission(src)).Value(SubmissionIDKey); strings.TrimSpace(id) != "" {
			return strings.TrimSpace(id)
		}
	}
	return ""
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fold reduces a label to its matching form: step prefix removed, accents
// stripped, case folded, whitespace collapsed.
func Fold(label string) string {
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripAccents, label)
	if err != nil {
		folded = label
	}
	folded = cases.Fold().String(folded)
	folded = strings.Join(strings.Fields(folded), " ")
	return stepPrefix.ReplaceAllString(folded, "")
}
