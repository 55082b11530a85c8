package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/praetorian-inc/posjson/pkg/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX export, in workbook order.
const (
	SheetHeaders      = "Headers"
	SheetLineItems    = "LineItems"
	SheetDetails      = "Details"
	SheetInstallments = "Installments"
	SheetErrors       = "Errors"
	SheetRawLines     = "RawLines"
)

// table is one sheet: fixed leading columns followed by the union of field
// names in first-seen order.
type table struct {
	name    string
	fixed   []string
	fields  []string
	seen    map[string]bool
	records []tableRow
}

type tableRow struct {
	fixed  []any
	fields types.Fields
}

func newTable(name string, fixed ...string) *table {
	return &table{name: name, fixed: fixed, seen: map[string]bool{}}
}

func (t *table) add(fields types.Fields, fixed ...any) {
	for _, name := range fields.Names() {
		if !t.seen[name] {
			t.seen[name] = true
			t.fields = append(t.fields, name)
		}
	}
	t.records = append(t.records, tableRow{fixed: fixed, fields: fields})
}

func (t *table) rows() [][]any {
	header := make([]any, 0, len(t.fixed)+len(t.fields))
	for _, f := range t.fixed {
		header = append(header, f)
	}
	for _, f := range t.fields {
		header = append(header, f)
	}

	out := [][]any{header}
	for _, r := range t.records {
		row := append([]any{}, r.fixed...)
		for _, name := range t.fields {
			v, _ := r.fields.Get(name)
			row = append(row, cellValue(v))
		}
		out = append(out, row)
	}
	return out
}

// WriteXLSX writes res as a workbook with one sheet per record level plus
// violations and raw lines. Child rows reference their parents by 1-based
// position (header #, item #).
func WriteXLSX(w io.Writer, res *types.ParseResult) error {
	headers := newTable(SheetHeaders, "header", "orphan")
	items := newTable(SheetLineItems, "header", "item", "placeholder")
	details := newTable(SheetDetails, "header", "item", "detail")
	installments := newTable(SheetInstallments, "header", "installment")

	for hi, h := range res.Result {
		headers.add(h.Fields, hi+1, h.Orphan)
		for ii, item := range h.LineItems {
			items.add(item.Fields, hi+1, ii+1, item.Placeholder)
			for di, d := range item.Details {
				details.add(d.Fields, hi+1, ii+1, di+1)
			}
		}
		for ni, inst := range h.Installments {
			installments.add(inst.Fields, hi+1, ni+1)
		}
	}

	errs := [][]any{{"lineNumber", "fieldName", "reason"}}
	for _, v := range res.Errors {
		errs = append(errs, []any{v.LineNumber, v.FieldName, v.Reason})
	}

	raw := [][]any{{"lineNumber", "discriminator", "text"}}
	for _, l := range res.RawLines {
		raw = append(raw, []any{l.LineNumber, l.Discriminator, l.Text})
	}

	f := excelize.NewFile()
	defer f.Close()

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetHeaders, headers.rows()},
		{SheetLineItems, items.rows()},
		{SheetDetails, details.rows()},
		{SheetInstallments, installments.rows()},
		{SheetErrors, errs},
		{SheetRawLines, raw},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet.name, err)
		}
		if err := writeSheet(f, sheet.name, sheet.rows, style); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}

	width := len(rows[0])
	if width == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(width, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}

	// Approximate auto-fit on header names
	for i, h := range rows[0] {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		w := float64(len(fmt.Sprint(h)) + 4)
		if w < 12 {
			w = 12
		}
		f.SetColWidth(sheet, colName, colName, w)
	}
	return nil
}

// cellValue converts a decoded value to something excelize writes as a
// typed cell: amounts and JSON numbers become numbers, nil an empty cell.
func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case types.Amount:
		return val.Float64()
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if fl, err := val.Float64(); err == nil {
			return fl
		}
		return val.String()
	default:
		return val
	}
}
