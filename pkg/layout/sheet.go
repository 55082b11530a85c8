package layout

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/praetorian-inc/posjson/pkg/types"
	"github.com/xuri/excelize/v2"
)

// Descriptor sheets are the spreadsheets the ERP vendor publishes, one per
// record type, with columns like "Seq", "Descrição", "Campo", "Tipo",
// "Decimais", "Obrig.", "Tam", "Início", "Término". Header spelling varies
// between exports, so headers are normalized before lookup.

// LoadCSV reads a descriptor sheet exported as CSV.
func LoadCSV(r io.Reader, discriminator string) (*types.Layout, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return layoutFromRows(rows, discriminator)
}

// LoadXLSX reads a descriptor sheet from the first worksheet of a workbook.
func LoadXLSX(data []byte, discriminator string) (*types.Layout, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return layoutFromRows(rows, discriminator)
}

// layoutFromRows converts header + data rows into a layout. Blank rows and
// rows without a field name are skipped.
func layoutFromRows(rows [][]string, discriminator string) (*types.Layout, error) {
	layout := newLayout(discriminator)

	var header []string
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if header == nil {
			header = make([]string, len(row))
			for i, h := range row {
				header[i] = NormalizeHeader(h)
			}
			continue
		}

		rec := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(row) {
				rec[key] = strings.TrimSpace(row[i])
			} else {
				rec[key] = ""
			}
		}

		fd, ok := descriptorFromRecord(rec)
		if ok {
			layout.Fields = append(layout.Fields, fd)
		}
	}

	if header == nil {
		return nil, fmt.Errorf("descriptor sheet is empty")
	}
	if err := ValidateLayout(layout); err != nil {
		return nil, err
	}
	return layout, nil
}

// descriptorFromRecord maps a normalized sheet row to a descriptor.
func descriptorFromRecord(rec map[string]string) (types.FieldDescriptor, bool) {
	name := rec["campo"]
	if name == "" {
		return types.FieldDescriptor{}, false
	}

	description := firstNonEmpty(rec["descricao"], rec["descri_o"], rec["descri_ao"])
	start := sheetInt(firstNonEmpty(rec["inicio"], rec["in_cio"]))
	end := sheetInt(firstNonEmpty(rec["fim"], rec["termino"], rec["t_rmino"]))

	var required string
	for key, val := range rec {
		if strings.HasPrefix(key, "obrig") {
			required = val
			break
		}
	}

	var decimals *int
	if d := sheetInt(rec["decimais"]); d > 0 {
		decimals = &d
	}

	return descriptor(name, description, rec["tipo"], decimals, sheetBool(required), start, end), true
}

// NormalizeHeader lowercases a sheet header and collapses every run of
// characters outside [a-z0-9] into one underscore, trimming underscores at
// the ends: "Descrição" becomes "descri_o", "Obrig." becomes "obrig".
func NormalizeHeader(h string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// sheetInt reads the numeric part of a cell ("12", "12.0", " 7 "). Empty
// or unparseable cells are 0, which callers treat as absent.
func sheetInt(s string) int {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// sheetBool treats any cell containing "sim" as true.
func sheetBool(s string) bool {
	return strings.Contains(strings.ToLower(s), "sim")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
