package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testLayoutsYAML = `layouts:
  - record_type: "1"
    title: Nota fiscal
    fields:
      - {name: tipo, type: Inteiro, start: 1, end: 1}
      - {name: nr-nota, type: Caracter, required: true, start: 2, end: 7}
  - record_type: "2"
    title: Item
    fields:
      - {name: tipo, type: Inteiro, start: 1, end: 1}
      - {name: it-codigo, type: Caracter, start: 2, end: 5}
      - {name: vl-item, type: Decimal, decimals: 2, start: 6, end: 11}
  - record_type: "4"
    title: Duplicata
    fields:
      - {name: tipo, type: Inteiro, start: 1, end: 1}
      - {name: dt-vencto, type: DDMMYYYY, start: 2, end: 9}
  - record_type: "8"
    title: Lote
    fields:
      - {name: tipo, type: Inteiro, start: 1, end: 1}
      - {name: lote, type: Caracter, start: 2, end: 5}
`

// testFeed has two headers; the second is missing its required nr-nota.
const testFeed = "1000123\n2ABCD000150\n8L001\n415012025\n1\n"

// writeTestLayouts writes testLayoutsYAML and points --layouts at it for
// the duration of the test.
func writeTestLayouts(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layouts.yml")
	require.NoError(t, os.WriteFile(path, []byte(testLayoutsYAML), 0644))

	prev := layoutsPath
	layoutsPath = path
	t.Cleanup(func() { layoutsPath = prev })
	return path
}

func writeFeed(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
