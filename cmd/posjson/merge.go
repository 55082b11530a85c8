package main

import (
	"fmt"

	"github.com/praetorian-inc/posjson/pkg/store"
	"github.com/spf13/cobra"
)

var (
	mergeOutput string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source1.db> <source2.db> [source3.db...]",
	Short: "Merge multiple posjson databases",
	Long: `Merge multiple posjson databases into a single output database.

This is useful for combining results from scans run on different
machines or against different feed directories.

Deduplication is automatic - a document parsed into more than one
source database is stored once, with the result from the first source
that contained it.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output database path")
}

func runMerge(cmd *cobra.Command, args []string) error {
	stats, err := store.Merge(store.MergeConfig{
		SourcePaths: args,
		DestPath:    mergeOutput,
	})
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Merge complete:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Sources processed: %d\n", stats.SourcesProcessed)
	fmt.Fprintf(cmd.OutOrStdout(), "  Documents merged: %d\n", stats.DocumentsMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Documents skipped: %d\n", stats.DocumentsSkipped)
	fmt.Fprintf(cmd.OutOrStdout(), "  Headers merged: %d\n", stats.HeadersMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Violations merged: %d\n", stats.ViolationsMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Raw lines merged: %d\n", stats.RawLinesMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", mergeOutput)

	return nil
}
