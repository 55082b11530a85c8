package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setScanFlags resets scan flags for a run against dbPath.
func setScanFlags(dbPath, format string) {
	scanOutputPath = dbPath
	scanOutputFormat = format
	scanMaxFileSize = 10 * 1024 * 1024
	scanIncludeHidden = false
	scanIncremental = false
	scanExtensions = ""
	scanEncoding = "latin1"
	scanWorkers = 2
}

func feedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFeed(t, dir, "nota1.txt", testFeed)
	writeFeed(t, dir, "nota2.txt", "1000777\n2WXYZ000010\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".old"), 0755))
	writeFeed(t, filepath.Join(dir, ".old"), "nota3.txt", "1000888\n")
	return dir
}

func TestRunScan(t *testing.T) {
	// Arrange
	writeTestLayouts(t)
	dir := feedDir(t)
	dbPath := filepath.Join(t.TempDir(), "scan.db")
	setScanFlags(dbPath, "human")
	var out, errOut bytes.Buffer

	// Act
	err := runScan(newTestCmd(&out, &errOut), []string{dir})

	// Assert
	require.NoError(t, err)
	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file should be created")

	output := out.String()
	assert.Contains(t, output, "Scan complete: 2 documents parsed")
	assert.Contains(t, output, "3 headers")
	assert.Contains(t, output, "nota1.txt")
	assert.Contains(t, output, "nota2.txt")
	assert.NotContains(t, output, "nota3.txt", "hidden directories are skipped")
}

func TestRunScan_Incremental(t *testing.T) {
	writeTestLayouts(t)
	dir := feedDir(t)
	dbPath := filepath.Join(t.TempDir(), "scan.db")

	setScanFlags(dbPath, "human")
	var out, errOut bytes.Buffer
	require.NoError(t, runScan(newTestCmd(&out, &errOut), []string{dir}))

	setScanFlags(dbPath, "human")
	scanIncremental = true
	out.Reset()
	require.NoError(t, runScan(newTestCmd(&out, &errOut), []string{dir}))

	assert.Contains(t, out.String(), "Scan complete: 0 documents parsed (2 skipped)")
}

func TestRunScan_JSONKeepsStdoutClean(t *testing.T) {
	writeTestLayouts(t)
	dir := feedDir(t)
	setScanFlags(filepath.Join(t.TempDir(), "scan.db"), "json")
	scanExtensions = "txt"
	var out, errOut bytes.Buffer

	err := runScan(newTestCmd(&out, &errOut), []string{dir})
	require.NoError(t, err)

	var docs []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &docs))
	assert.Len(t, docs, 2)
	assert.Contains(t, errOut.String(), "Scan complete")
}

func TestRunScan_ExtensionFilter(t *testing.T) {
	writeTestLayouts(t)
	dir := feedDir(t)
	setScanFlags(filepath.Join(t.TempDir(), "scan.db"), "human")
	scanExtensions = "dat"
	var out, errOut bytes.Buffer

	err := runScan(newTestCmd(&out, &errOut), []string{dir})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No documents.")
}

func TestRunScanInvalidTarget(t *testing.T) {
	var out, errOut bytes.Buffer
	setScanFlags(":memory:", "human")

	err := runScan(newTestCmd(&out, &errOut), []string{"/nonexistent/path"})
	assert.Error(t, err, "should error on nonexistent target")
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"txt", "dat"}, splitList(" txt, ,dat "))
}
