package main

import (
	"fmt"

	"github.com/praetorian-inc/posjson/pkg/engine"
	"github.com/praetorian-inc/posjson/pkg/layout"
	"github.com/praetorian-inc/posjson/pkg/types"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	quiet       bool
	layoutsPath string
)

var rootCmd = &cobra.Command{
	Use:   "posjson",
	Short: "posjson - positional ERP feed to JSON converter",
	Long: `posjson converts fixed-width ERP integration feeds into nested JSON.

Each line is decoded with the layout selected by its first character, and
the decoded records are assembled into headers with their line items,
item details, and installments. Datasul invoice layouts (record types
1, 2, 4 and 8) are built in; pass --layouts to use your own.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().StringVar(&layoutsPath, "layouts", "", "Path to a layout file or directory (yml, json, csv, xlsx)")

	// Add subcommands
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(layoutsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mergeCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// =============================================================================
// HELPERS
// =============================================================================

// loadLayouts returns the layouts at path, or the builtin set when path is
// empty.
func loadLayouts(path string) (types.LayoutSet, error) {
	if path == "" {
		set, err := engine.GetBuiltinLayouts()
		if err != nil {
			return nil, fmt.Errorf("loading builtin layouts: %w", err)
		}
		return set, nil
	}

	set, err := layout.NewLoader().LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("loading layouts from %s: %w", path, err)
	}
	return set, nil
}

// debugLogger returns a stderr logger under --verbose.
func debugLogger(cmd *cobra.Command) engine.DebugLogger {
	if !verbose || quiet {
		return engine.NoopLogger{}
	}
	return engine.NewWriterLogger(cmd.ErrOrStderr(), "debug: ")
}

// statusf prints a status line to stderr unless --quiet is set.
func statusf(cmd *cobra.Command, format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}
