// Package pipeline turns one raw enrollment submission into a Decision.
//
// Processing is a single forward pass with no I/O: normalize every field,
// resolve the Nombre / "Indique su título" alias, check required fields,
// assemble the canonical record and classify it as SKIP, ERROR or UPSERT.
// A Pipeline holds no mutable state and is safe for concurrent use.
package pipeline

import (
	"strings"

	"deca/pkg/model"
	"deca/pkg/sanitizer"
)

// MappingVersion identifies the canonical schema and rules implemented here.
const MappingVersion = "3.1.0"

const (
	ReasonEmptyRow = "empty row"
	ReasonOK       = "OK"

	ErrEmailMissing          = "email missing"
	ErrNameMissing           = "name missing"
	ErrSurnameMissing        = "surname missing"
	ErrDocumentMissing       = "document id missing"
	ErrSubmissionDateMissing = "submission date missing"

	reviewQualifier = " - manual review required"
)

// FormatValidator adds syntax checks on top of the required-field policy.
// It only sees the assembled record and returns one token per problem.
type FormatValidator interface {
	Validate(record model.CanonicalRecord) []string
}

type Options struct {
	// IncludeStatusField appends "ACEPTADO EN": "PENDIENTE" to ERROR and UPSERT records.
	IncludeStatusField bool
	// ComputeIdempotencyKey derives "<email>:<submitted>" for ERROR and UPSERT decisions.
	ComputeIdempotencyKey bool
	// Formats is optional.
	Formats FormatValidator
}

func DefaultOptions() Options {
	return Options{
		IncludeStatusField:    true,
		ComputeIdempotencyKey: true,
	}
}

type Pipeline struct {
	opts Options
}

func New(opts Options) *Pipeline {
	return &Pipeline{opts: opts}
}

func (p *Pipeline) Options() Options {
	return p.opts
}

// Process classifies raw. It never panics and never mutates raw.
func (p *Pipeline) Process(raw model.RawSubmission) model.Decision {
	if raw.IsBlank() {
		return model.Decision{
			Action:  model.ActionSkip,
			Reason:  ReasonEmptyRow,
			Errors:  []string{},
			Targets: model.CanonicalRecord{},
		}
	}

	values := make(map[string]any, len(model.Schema))
	for _, spec := range model.Schema {
		values[spec.Key] = normalize(spec.Kind, raw.Value(spec.Raw))
	}
	resolveAlias(values)

	errs := requiredErrors(values)

	record := make(model.CanonicalRecord, 0, len(model.Schema)+1)
	for _, spec := range model.Schema {
		record = append(record, model.Field{Key: spec.Key, Value: values[spec.Key]})
	}

	if p.opts.Formats != nil {
		errs = append(errs, p.opts.Formats.Validate(record)...)
	}

	if p.opts.IncludeStatusField {
		record = append(record, model.Field{Key: model.KeyAceptadoEn, Value: model.StatusPending})
	}

	decision := model.Decision{
		Action:  model.ActionUpsert,
		Reason:  ReasonOK,
		Errors:  errs,
		Targets: record,
	}
	if len(errs) > 0 {
		decision.Action = model.ActionError
		decision.Reason = strings.Join(errs, ", ") + reviewQualifier
	}
	if p.opts.ComputeIdempotencyKey {
		decision.IdempotencyKey = IdempotencyKey(record)
	}

	return decision
}

// Process runs a one-off pipeline with opts.
func Process(raw model.RawSubmission, opts Options) model.Decision {
	return New(opts).Process(raw)
}

// IdempotencyKey returns "<email>:<submitted>" or "" when either part is missing.
func IdempotencyKey(record model.CanonicalRecord) string {
	email, ok := record.String(model.KeyEmail)
	if !ok {
		return ""
	}
	submitted, ok := record.String(model.KeySubmittedOn)
	if !ok {
		return ""
	}
	return email + ":" + submitted
}

func normalize(kind model.FieldKind, value string) any {
	switch kind {
	case model.KindList:
		return sanitizer.SplitCSV(value)
	case model.KindEmail:
		return orNil(sanitizer.NormalizeEmail(value))
	case model.KindPhone:
		return orNil(sanitizer.NormalizePhone(value))
	case model.KindDocument:
		return orNil(sanitizer.NormalizeDNI(value))
	case model.KindSex:
		return orNil(sanitizer.NormalizeSexo(value))
	case model.KindDate:
		return orNil(sanitizer.ParseDate(value))
	case model.KindDateTime:
		return orNil(sanitizer.ParseDateTime(value))
	default:
		return orNil(sanitizer.NormalizeString(value))
	}
}

// orNil keeps a nil *string from turning into a typed nil inside an interface.
func orNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
