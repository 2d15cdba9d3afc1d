// Package export writes batches of decisions to an XLSX workbook laid out
// like the SOLICITUDES_DECA sheet.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"deca/pkg/model"
)

const (
	SheetUpsert = "UPSERT"
	SheetError  = "ERROR"

	ColumnErrors         = "Errores"
	ColumnIdempotencyKey = "idempotency_key"

	listSeparator = ", "
)

// Columns returns the header row of a sheet. Canonical keys come first in
// schema order; the ERROR sheet leads with the error tokens.
func Columns(sheet string) []string {
	cols := make([]string, 0, len(model.Schema)+3)
	if sheet == SheetError {
		cols = append(cols, ColumnErrors)
	}
	for _, spec := range model.Schema {
		cols = append(cols, spec.Key)
	}
	return append(cols, model.KeyAceptadoEn, ColumnIdempotencyKey)
}

// Row renders one decision under Columns(sheet).
func Row(sheet string, d model.Decision) []any {
	cols := Columns(sheet)
	row := make([]any, len(cols))
	for i, col := range cols {
		switch col {
		case ColumnErrors:
			row[i] = strings.Join(d.Errors, listSeparator)
		case ColumnIdempotencyKey:
			row[i] = d.IdempotencyKey
		default:
			row[i] = cell(d.Targets, col)
		}
	}
	return row
}

func cell(record model.CanonicalRecord, key string) string {
	v, _ := record.Get(key)
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, listSeparator)
	default:
		return ""
	}
}

// Summary counts what a workbook received.
type Summary struct {
	Upserts int
	Errors  int
	Skipped int
}

// Workbook builds a file with one sheet per stored action. SKIP decisions
// are counted and dropped. The caller closes the file.
func Workbook(decisions []model.Decision) (*excelize.File, Summary, error) {
	var sum Summary
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetUpsert); err != nil {
		_ = f.Close()
		return nil, sum, fmt.Errorf("rename default sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetError); err != nil {
		_ = f.Close()
		return nil, sum, fmt.Errorf("create %s sheet: %w", SheetError, err)
	}

	next := map[string]int{SheetUpsert: 2, SheetError: 2}
	for _, sheet := range []string{SheetUpsert, SheetError} {
		header := make([]any, 0, len(Columns(sheet)))
		for _, col := range Columns(sheet) {
			header = append(header, col)
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			_ = f.Close()
			return nil, sum, fmt.Errorf("write %s header: %w", sheet, err)
		}
	}

	for _, d := range decisions {
		var sheet string
		switch d.Action {
		case model.ActionUpsert:
			sheet = SheetUpsert
			sum.Upserts++
		case model.ActionError:
			sheet = SheetError
			sum.Errors++
		default:
			sum.Skipped++
			continue
		}

		axis, err := excelize.CoordinatesToCellName(1, next[sheet])
		if err != nil {
			_ = f.Close()
			return nil, sum, err
		}
		row := Row(sheet, d)
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			_ = f.Close()
			return nil, sum, fmt.Errorf("write %s row %d: %w", sheet, next[sheet], err)
		}
		next[sheet]++
	}

	return f, sum, nil
}

// WriteXLSX streams the workbook for decisions to w.
func WriteXLSX(w io.Writer, decisions []model.Decision) (Summary, error) {
	f, sum, err := Workbook(decisions)
	if err != nil {
		return sum, err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return sum, fmt.Errorf("write workbook: %w", err)
	}
	return sum, nil
}
