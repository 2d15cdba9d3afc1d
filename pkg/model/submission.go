package model

import (
	"encoding/json"
	"strconv"
)

// Raw field names as delivered by the form trigger.
const (
	FieldSubmittedOn      = "submitted_on"
	FieldEmail            = "email"
	FieldNombre           = "nombre"
	FieldApellidos        = "apellidos"
	FieldDNI              = "dni"
	FieldTipoMatricula    = "tipo_matricula"
	FieldSeleccionModulos = "seleccion_modulos"
	FieldTituloCivil      = "titulo_civil"
	FieldIndiqueTitulo    = "indique_titulo"
	FieldCalle            = "calle"
	FieldNumeroPiso       = "numero_piso"
	FieldCentroAsociado   = "centro_asociado"
	FieldNombreCentro     = "nombre_centro"
	FieldPoblacion        = "poblacion"
	FieldCodigoPostal     = "codigo_postal"
	FieldProvincia        = "provincia"
	FieldFechaNacimiento  = "fecha_nacimiento"
	FieldEstadoCivil      = "estado_civil"
	FieldSexo             = "sexo"
	FieldTelefono         = "telefono"
	FieldFirma            = "firma"
	FieldThankYou         = "thank_you"
)

// RawFields lists every raw field the pipeline reads, in form order.
var RawFields = []string{
	FieldSubmittedOn,
	FieldEmail,
	FieldNombre,
	FieldApellidos,
	FieldDNI,
	FieldTipoMatricula,
	FieldSeleccionModulos,
	FieldTituloCivil,
	FieldIndiqueTitulo,
	FieldCalle,
	FieldNumeroPiso,
	FieldCentroAsociado,
	FieldNombreCentro,
	FieldPoblacion,
	FieldCodigoPostal,
	FieldProvincia,
	FieldFechaNacimiento,
	FieldEstadoCivil,
	FieldSexo,
	FieldTelefono,
	FieldFirma,
	FieldThankYou,
}

// RawSubmission is one form submission keyed by raw field name. Values are
// scalars as decoded from JSON or form data; nil and missing keys mean "no value".
type RawSubmission map[string]any

// Value renders the named field as a string. Missing, nil and composite
// values render as "".
func (r RawSubmission) Value(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}

	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// IsBlank reports whether every raw field is missing or exactly "".
// Whitespace-only values count as data.
func (r RawSubmission) IsBlank() bool {
	for _, field := range RawFields {
		if r.Value(field) != "" {
			return false
		}
	}
	return true
}
