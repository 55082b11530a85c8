package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLayoutsList_Builtin(t *testing.T) {
	layoutsPath = ""
	layoutsFormat = "table"
	var out, errOut bytes.Buffer

	err := runLayoutsList(newTestCmd(&out, &errOut), nil)
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "TYPE")
	assert.Contains(t, output, "header")
	assert.Contains(t, output, "line_item")
	assert.Contains(t, output, "installment")
	assert.Contains(t, output, "detail")
	assert.Contains(t, output, "Total: 4 layouts")
}

func TestRunLayoutsList_CustomJSON(t *testing.T) {
	writeTestLayouts(t)
	layoutsFormat = "json"
	var out, errOut bytes.Buffer

	err := runLayoutsList(newTestCmd(&out, &errOut), nil)
	require.NoError(t, err)

	var list []struct {
		Discriminator string `json:"discriminator"`
		Title         string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &list))
	require.Len(t, list, 4)
	assert.Equal(t, "1", list[0].Discriminator)
	assert.Equal(t, "Nota fiscal", list[0].Title)
}

func TestRunLayoutsShow(t *testing.T) {
	writeTestLayouts(t)
	layoutsFormat = "table"
	var out, errOut bytes.Buffer

	err := runLayoutsShow(newTestCmd(&out, &errOut), []string{"2"})
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "Record type 2: Item (line_item)")
	assert.Contains(t, output, "vl-item")
	assert.Contains(t, output, "decimal(2)")
	assert.NotContains(t, output, "warning:")
}

func TestRunLayoutsShow_UnknownType(t *testing.T) {
	writeTestLayouts(t)
	layoutsFormat = "table"
	var out, errOut bytes.Buffer

	err := runLayoutsShow(newTestCmd(&out, &errOut), []string{"9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no layout for record type "9"`)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, "-", offset(0))
	assert.Equal(t, "12", offset(12))
}
