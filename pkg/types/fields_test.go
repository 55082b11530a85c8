package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields_MarshalKeepsOrder(t *testing.T) {
	fields := Fields{
		{Name: "nr-nota", Value: "000123"},
		{Name: "dt-emissao", Value: "2023-12-25"},
		{Name: "vl-total", Value: NewAmount(decimal.NewFromInt(12345), 2)},
		{Name: "cancelada", Value: false},
		{Name: "qt-parcelas", Value: int64(3)},
		{Name: "observacao", Value: nil},
	}

	data, err := json.Marshal(fields)
	require.NoError(t, err)

	assert.Equal(t,
		`{"nr-nota":"000123","dt-emissao":"2023-12-25","vl-total":123.45,"cancelada":false,"qt-parcelas":3,"observacao":null}`,
		string(data))
}

func TestFields_NilMarshalsAsEmptyObject(t *testing.T) {
	var fields Fields

	data, err := json.Marshal(fields)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestFields_UnmarshalKeepsOrder(t *testing.T) {
	var fields Fields
	err := json.Unmarshal([]byte(`{"z":1.5,"a":"x","m":null,"b":true}`), &fields)
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "a", "m", "b"}, fields.Names())

	z, ok := fields.Get("z")
	require.True(t, ok)
	assert.Equal(t, json.Number("1.5"), z)

	m, ok := fields.Get("m")
	require.True(t, ok)
	assert.Nil(t, m)
}

func TestFields_UnmarshalRejectsNonObject(t *testing.T) {
	var fields Fields
	err := json.Unmarshal([]byte(`[1,2]`), &fields)
	assert.Error(t, err)
}

func TestFields_Set(t *testing.T) {
	fields := Fields{}
	fields.Set("a", "1")
	fields.Set("b", "2")
	fields.Set("a", "3")

	assert.Equal(t, []string{"a", "b"}, fields.Names())
	assert.Equal(t, map[string]any{"a": "3", "b": "2"}, fields.Map())

	_, ok := fields.Get("missing")
	assert.False(t, ok)
}
