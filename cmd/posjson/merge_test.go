package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/posjson/pkg/parser"
	"github.com/praetorian-inc/posjson/pkg/store"
	"github.com/praetorian-inc/posjson/pkg/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMergeCmd creates a fresh merge command for testing
func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <source1.db> <source2.db> [source3.db...]",
		Short: "Merge multiple posjson databases",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runMerge,
	}
	cmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output database path")
	return cmd
}

// sourceDB creates a database holding one parse of each text.
func sourceDB(t *testing.T, path string, texts ...string) {
	t.Helper()
	s, err := store.NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	layouts, err := loadLayouts("")
	require.NoError(t, err)
	for _, text := range texts {
		res := parser.Parse(text, layouts)
		doc := types.NewDocument(text, types.InlineProvenance{Source: path}, res)
		require.NoError(t, s.AddDocument(doc))
		require.NoError(t, s.AddResult(doc.ID, res))
	}
}

func TestMergeCmd_RequiresMinimumArgs(t *testing.T) {
	cmd := newMergeCmd()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg")

	cmd = newMergeCmd()
	cmd.SetArgs([]string{"source1.db"})
	err = cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg")
}

func TestMergeCmd_MergesTwoDatabases(t *testing.T) {
	// Arrange
	tmpDir := t.TempDir()
	source1Path := filepath.Join(tmpDir, "source1.db")
	source2Path := filepath.Join(tmpDir, "source2.db")
	sourceDB(t, source1Path, "1A\n")
	sourceDB(t, source2Path, "1B\n")

	destPath := filepath.Join(tmpDir, "merged.db")
	var buf bytes.Buffer
	cmd := newMergeCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{source1Path, source2Path, "--output", destPath})

	// Act
	err := cmd.Execute()

	// Assert
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "Merge complete")
	assert.Contains(t, output, "Sources processed: 2")
	assert.Contains(t, output, "Documents merged: 2")
	assert.Contains(t, output, "Headers merged: 2")

	dest, err := store.NewSQLite(destPath)
	require.NoError(t, err)
	defer dest.Close()

	exists1, _ := dest.DocumentExists(types.ComputeDocumentID("1A\n"))
	exists2, _ := dest.DocumentExists(types.ComputeDocumentID("1B\n"))
	assert.True(t, exists1)
	assert.True(t, exists2)
}

func TestMergeCmd_ReportsDeduplication(t *testing.T) {
	tmpDir := t.TempDir()
	source1Path := filepath.Join(tmpDir, "source1.db")
	source2Path := filepath.Join(tmpDir, "source2.db")
	sourceDB(t, source1Path, "1SAME\n")
	sourceDB(t, source2Path, "1SAME\n")

	destPath := filepath.Join(tmpDir, "merged.db")
	var buf bytes.Buffer
	cmd := newMergeCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{source1Path, source2Path, "--output", destPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Documents merged: 1")
	assert.Contains(t, output, "Documents skipped: 1")
}

func TestMergeCmd_FailsWithInvalidSource(t *testing.T) {
	tmpDir := t.TempDir()
	destPath := filepath.Join(tmpDir, "merged.db")
	cmd := newMergeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(tmpDir, "nope1.db"), filepath.Join(tmpDir, "nope2.db"), "--output", destPath})

	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "merge failed")
}
