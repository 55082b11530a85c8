package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/posjson/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scannedDB scans feedDir into a fresh database and returns its path.
func scannedDB(t *testing.T) string {
	t.Helper()
	writeTestLayouts(t)
	dbPath := filepath.Join(t.TempDir(), "report.db")
	setScanFlags(dbPath, "human")
	var out, errOut bytes.Buffer
	require.NoError(t, runScan(newTestCmd(&out, &errOut), []string{feedDir(t)}))
	return dbPath
}

func setReportFlags(dbPath, format string) {
	reportDatastore = dbPath
	reportFormat = format
	reportColor = "never"
	reportDocument = ""
	reportViolations = 5
}

func TestRunReport_Human(t *testing.T) {
	// Arrange
	dbPath := scannedDB(t)
	setReportFlags(dbPath, "human")
	var out, errOut bytes.Buffer

	// Act
	err := runReport(newTestCmd(&out, &errOut), nil)

	// Assert
	require.NoError(t, err)
	output := out.String()
	assert.Contains(t, output, "Document 1/2")
	assert.Contains(t, output, "Document 2/2")
	assert.Contains(t, output, "nota1.txt")
	assert.Contains(t, output, "Violations (1):")
	assert.Contains(t, output, "Total: 2 documents")
	assert.NotContains(t, output, "\x1b[", "colors are off with --color never")
}

func TestRunReport_JSON(t *testing.T) {
	dbPath := scannedDB(t)
	setReportFlags(dbPath, "json")
	var out, errOut bytes.Buffer

	err := runReport(newTestCmd(&out, &errOut), nil)
	require.NoError(t, err)

	var reports []struct {
		Source     string                 `json:"source"`
		Stats      types.Stats            `json:"stats"`
		Violations []types.FieldViolation `json:"violations"`
		Result     []json.RawMessage      `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &reports))
	require.Len(t, reports, 2)

	byViolations := 0
	for _, r := range reports {
		byViolations += len(r.Violations)
		assert.Nil(t, r.Result, "record trees only appear with --document")
	}
	assert.Equal(t, 1, byViolations)
}

func TestRunReport_SingleDocument(t *testing.T) {
	dbPath := scannedDB(t)
	id := types.ComputeDocumentID(testFeed)
	setReportFlags(dbPath, "human")
	reportDocument = id.Short()
	var out, errOut bytes.Buffer

	err := runReport(newTestCmd(&out, &errOut), nil)
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "Document 1/1")
	assert.Contains(t, output, "Header 1/2")
	assert.Contains(t, output, "Line item 1")
	assert.NotContains(t, output, "Total:")
}

func TestRunReport_Errors(t *testing.T) {
	dbPath := scannedDB(t)

	tests := []struct {
		name      string
		datastore string
		format    string
		document  string
		wantErr   string
	}{
		{name: "in-memory", datastore: ":memory:", format: "human", wantErr: "in-memory"},
		{name: "missing", datastore: "/nonexistent/x.db", format: "human", wantErr: "datastore not found"},
		{name: "unknown format", datastore: dbPath, format: "sarif", wantErr: "unknown output format"},
		{name: "unknown document", datastore: dbPath, format: "human", document: "ffffffffffff", wantErr: "document not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setReportFlags(tt.datastore, tt.format)
			reportDocument = tt.document
			var out, errOut bytes.Buffer

			err := runReport(newTestCmd(&out, &errOut), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFindDocument_Ambiguous(t *testing.T) {
	a := &types.Document{ID: types.ComputeDocumentID("a")}
	b := &types.Document{ID: types.ComputeDocumentID("b")}

	found, err := findDocument([]*types.Document{a, b}, a.ID.Hex())
	require.NoError(t, err)
	assert.Same(t, a, found)

	_, err = findDocument([]*types.Document{a, b}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}
