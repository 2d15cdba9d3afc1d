// Package validator holds the optional strict format checks layered on top of
// the pipeline's required-field policy.
package validator

import (
	"errors"
	"fmt"
	"regexp"

	"deca/pkg/locale"
	"deca/pkg/model"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

const (
	TagSpanishID = "spanish_id"

	TokenEmailInvalid    = "email format invalid"
	TokenDocumentInvalid = "document id format invalid"
	TokenPhoneInvalid    = "phone format invalid"
)

// DNI: 8 digits + letter. NIE: X/Y/Z + 7 digits + letter. Older records omit the letter.
var spanishIDRegex = regexp.MustCompile(`^[0-9XYZ][0-9]{6,7}[A-Z]?$`)

type formatFields struct {
	Email    string `validate:"omitempty,email"`
	Document string `validate:"omitempty,spanish_id"`
}

type FormatValidator struct {
	validate      *validator.Validate
	defaultRegion string
}

// NewFormatValidator builds a validator. Phones without an international
// prefix are checked against defaultRegion.
func NewFormatValidator(defaultRegion string) *FormatValidator {
	v := validator.New()
	_ = v.RegisterValidation(TagSpanishID, func(fl validator.FieldLevel) bool {
		return spanishIDRegex.MatchString(fl.Field().String())
	})

	return &FormatValidator{
		validate:      v,
		defaultRegion: defaultRegion,
	}
}

// Validate returns one token per malformed value, in email, document, phone
// order. Missing values are left to the required-field check.
func (v *FormatValidator) Validate(record model.CanonicalRecord) []string {
	email, _ := record.String(model.KeyEmail)
	document, _ := record.String(model.KeyDNI)
	fields := formatFields{Email: email, Document: document}

	var tokens []string
	if err := v.validate.Struct(fields); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			tokens = append(tokens, translate(validationErrs, fields)...)
		} else {
			tokens = append(tokens, err.Error())
		}
	}

	if phone, ok := record.String(model.KeyTelefono); ok && !v.validPhone(phone) {
		tokens = append(tokens, fmt.Sprintf("%s: %s", TokenPhoneInvalid, phone))
	}
	return tokens
}

func translate(errs validator.ValidationErrors, fields formatFields) []string {
	var tokens []string
	for _, fe := range errs {
		switch fe.Field() {
		case "Email":
			tokens = append(tokens, fmt.Sprintf("%s: %s", TokenEmailInvalid, fields.Email))
		case "Document":
			tokens = append(tokens, fmt.Sprintf("%s: %s", TokenDocumentInvalid, fields.Document))
		}
	}
	return tokens
}

func (v *FormatValidator) validPhone(phone string) bool {
	region := locale.InferRegion(phone, v.defaultRegion)
	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(parsed)
}
