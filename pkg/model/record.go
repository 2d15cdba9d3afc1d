package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Canonical keys of the downstream SOLICITUDES_DECA table.
const (
	KeySubmittedOn      = "Submitted On (UTC)"
	KeyTipoMatricula    = "¿En qué se desea matricular?"
	KeySeleccionModulos = "Selección de módulos"
	KeyTituloCivil      = "Título civil"
	KeyOtroTitulo       = "Especificar otro título"
	KeyNombre           = "Nombre"
	KeyApellidos        = "Apellidos"
	KeyCalle            = "Calle (vía)"
	KeyNumeroPiso       = "Número, piso, puerta"
	KeyCentroAsociado   = "Centro asociado al que pertenece"
	KeyNombreCentro     = "Indique el nombre del centro"
	KeyPoblacion        = "Población"
	KeyCodigoPostal     = "Código postal"
	KeyProvincia        = "Provincia"
	KeyDNI              = "DNI / Pasaporte / NIE"
	KeyFechaNacimiento  = "Fecha de nacimiento"
	KeyEstadoCivil      = "Estado civil"
	KeySexo             = "Sexo"
	KeyTelefono         = "Teléfono de contacto"
	KeyEmail            = "Correo electrónico"
	KeyFirma            = "Firma del solicitante"
	KeyThankYou         = "Thank You Screen"

	KeyAceptadoEn = "ACEPTADO EN"
	StatusPending = "PENDIENTE"
)

// FieldKind selects the normalizer applied to a raw field.
type FieldKind int

const (
	KindText FieldKind = iota
	KindEmail
	KindPhone
	KindDocument
	KindSex
	KindDate
	KindDateTime
	KindList
)

type FieldSpec struct {
	Raw  string
	Key  string
	Kind FieldKind
}

// Schema is the canonical record layout. Order here is the output order.
var Schema = []FieldSpec{
	{Raw: FieldSubmittedOn, Key: KeySubmittedOn, Kind: KindDateTime},
	{Raw: FieldTipoMatricula, Key: KeyTipoMatricula, Kind: KindText},
	{Raw: FieldSeleccionModulos, Key: KeySeleccionModulos, Kind: KindList},
	{Raw: FieldTituloCivil, Key: KeyTituloCivil, Kind: KindText},
	{Raw: FieldIndiqueTitulo, Key: KeyOtroTitulo, Kind: KindText},
	{Raw: FieldNombre, Key: KeyNombre, Kind: KindText},
	{Raw: FieldApellidos, Key: KeyApellidos, Kind: KindText},
	{Raw: FieldCalle, Key: KeyCalle, Kind: KindText},
	{Raw: FieldNumeroPiso, Key: KeyNumeroPiso, Kind: KindText},
	{Raw: FieldCentroAsociado, Key: KeyCentroAsociado, Kind: KindText},
	{Raw: FieldNombreCentro, Key: KeyNombreCentro, Kind: KindText},
	{Raw: FieldPoblacion, Key: KeyPoblacion, Kind: KindText},
	{Raw: FieldCodigoPostal, Key: KeyCodigoPostal, Kind: KindText},
	{Raw: FieldProvincia, Key: KeyProvincia, Kind: KindText},
	{Raw: FieldDNI, Key: KeyDNI, Kind: KindDocument},
	{Raw: FieldFechaNacimiento, Key: KeyFechaNacimiento, Kind: KindDate},
	{Raw: FieldEstadoCivil, Key: KeyEstadoCivil, Kind: KindText},
	{Raw: FieldSexo, Key: KeySexo, Kind: KindSex},
	{Raw: FieldTelefono, Key: KeyTelefono, Kind: KindPhone},
	{Raw: FieldEmail, Key: KeyEmail, Kind: KindEmail},
	{Raw: FieldFirma, Key: KeyFirma, Kind: KindText},
	{Raw: FieldThankYou, Key: KeyThankYou, Kind: KindText},
}

// Field is one canonical entry. Value is nil, a string or a []string.
type Field struct {
	Key   string
	Value any
}

// CanonicalRecord keeps its fields in schema order.
type CanonicalRecord []Field

func (r CanonicalRecord) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// String returns the string value under key, or "" and false when the key is
// missing, null or not a string.
func (r CanonicalRecord) String(key string) (string, bool) {
	v, _ := r.Get(key)
	s, ok := v.(string)
	return s, ok
}

func (r CanonicalRecord) Strings(key string) []string {
	v, _ := r.Get(key)
	if list, ok := v.([]string); ok {
		return list
	}
	return nil
}

func (r CanonicalRecord) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Without returns a copy of the record minus the given key.
func (r CanonicalRecord) Without(key string) CanonicalRecord {
	out := make(CanonicalRecord, 0, len(r))
	for _, f := range r {
		if f.Key != key {
			out = append(out, f)
		}
	}
	return out
}

func (r CanonicalRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *CanonicalRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*r = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("canonical record: expected object, got %v", tok)
	}

	out := CanonicalRecord{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("canonical record: expected key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		value, err := decodeFieldValue(raw)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out = append(out, Field{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = out
	return nil
}

func decodeFieldValue(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		return nil, nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		list := []string{}
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	default:
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return s, nil
	}
}
