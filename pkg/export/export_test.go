package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/praetorian-inc/posjson/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResult() *types.ParseResult {
	res := types.NewParseResult()

	h1 := types.NewHeaderRecord(types.Fields{
		{Name: "nr-nota-fis", Value: "000123"},
		{Name: "vl-tot-nota", Value: types.NewAmount(decimal.NewFromInt(150075), 2)},
	})
	item := types.NewLineItemRecord(types.Fields{{Name: "it-codigo", Value: "ABC"}, {Name: "qt", Value: nil}})
	item.Details = append(item.Details, types.NewDetailRecord(types.Fields{{Name: "lote", Value: "L1"}}))
	h1.LineItems = append(h1.LineItems, item)
	h1.Installments = append(h1.Installments, types.NewInstallmentRecord(types.Fields{{Name: "parcela", Value: int64(1)}}))

	h2 := types.NewHeaderRecord(nil)
	h2.Orphan = true
	placeholder := types.NewLineItemRecord(nil)
	placeholder.Placeholder = true
	h2.LineItems = append(h2.LineItems, placeholder)

	res.Result = append(res.Result, h1, h2)
	res.RawLines = append(res.RawLines, types.RawLine{LineNumber: 1, Text: "1000123", Discriminator: "1"})
	res.Errors = append(res.Errors, types.FieldViolation{LineNumber: 1, FieldName: "dt-emis-nota", Reason: types.ReasonRequiredMissing})
	return res
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("result")
	require.NoError(t, err)
	assert.Equal(t, ModeResult, m)

	m, err = ParseMode("full")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, m)

	_, err = ParseMode("table")
	assert.Error(t, err)
}

func TestWriteJSON_ResultOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult(), ModeResult))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Contains(t, buf.String(), `"vl-tot-nota": 1500.75`)
	assert.NotContains(t, buf.String(), "rawLines")
}

func TestWriteJSON_Full(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult(), ModeFull))

	var out struct {
		Result   []any `json:"result"`
		RawLines []any `json:"rawLines"`
		Errors   []any `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Len(t, out.Result, 2)
	assert.Len(t, out.RawLines, 1)
	assert.Len(t, out.Errors, 1)
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, types.NewParseResult(), ModeResult))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	// Arrange
	var buf bytes.Buffer

	// Act
	err := WriteXLSX(&buf, sampleResult())

	// Assert
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetHeaders, SheetLineItems, SheetDetails, SheetInstallments, SheetErrors, SheetRawLines}, f.GetSheetList())

	headers, err := f.GetRows(SheetHeaders)
	require.NoError(t, err)
	require.Len(t, headers, 3)
	assert.Equal(t, []string{"header", "orphan", "nr-nota-fis", "vl-tot-nota"}, headers[0])
	assert.Equal(t, []string{"1", "FALSE", "000123", "1500.75"}, headers[1])
	assert.Equal(t, []string{"2", "TRUE"}, headers[2])

	items, err := f.GetRows(SheetLineItems)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"header", "item", "placeholder", "it-codigo", "qt"}, items[0])
	assert.Equal(t, []string{"1", "1", "FALSE", "ABC"}, items[1])
	assert.Equal(t, []string{"2", "1", "TRUE"}, items[2])

	details, err := f.GetRows(SheetDetails)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, []string{"1", "1", "1", "L1"}, details[1])

	installments, err := f.GetRows(SheetInstallments)
	require.NoError(t, err)
	require.Len(t, installments, 2)
	assert.Equal(t, []string{"1", "1", "1"}, installments[1])

	errs, err := f.GetRows(SheetErrors)
	require.NoError(t, err)
	require.Len(t, errs, 2)
	assert.Equal(t, []string{"1", "dt-emis-nota", types.ReasonRequiredMissing}, errs[1])

	raw, err := f.GetRows(SheetRawLines)
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, []string{"1", "1", "1000123"}, raw[1])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, types.NewParseResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetHeaders)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"header", "orphan"}, rows[0])
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, cellValue(nil))
	assert.Equal(t, 12.5, cellValue(types.NewAmount(decimal.NewFromInt(1250), 2)))
	assert.Equal(t, int64(7), cellValue(json.Number("7")))
	assert.Equal(t, 7.25, cellValue(json.Number("7.25")))
	assert.Equal(t, "x", cellValue("x"))
	assert.Equal(t, true, cellValue(true))
}
