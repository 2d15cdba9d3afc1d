// Package sanitizer provides the field normalizers used by the enrollment pipeline.
//
// Every normalizer is total and idempotent: it never fails, and applying it to its
// own output returns the same value. Values that are absent, blank or do not parse
// normalize to nil rather than an error, leaving failure handling to validation.
//
// Normalization includes:
//   - Strings: collapse whitespace runs, trim
//   - Emails: string normalization plus lowercase
//   - Phones: keep digits and '+', reject fewer than 9 characters
//   - Document ids (DNI / NIE / passport): drop spaces and hyphens, uppercase
//   - Sex: map Hombre/Mujer spellings to Masculino/Femenino
//   - Dates: "5 Mar, 1990" to 1990-03-05, "5 Mar, 2024 14:07" to 2024-03-05T14:07:00Z
//   - Lists: split comma separated values, trim, drop empties
package sanitizer
