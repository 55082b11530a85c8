package main

import (
	"fmt"
	"io"
	"os"

	"github.com/praetorian-inc/posjson/pkg/engine"
	"github.com/praetorian-inc/posjson/pkg/enum"
	"github.com/praetorian-inc/posjson/pkg/export"
	"github.com/praetorian-inc/posjson/pkg/store"
	"github.com/praetorian-inc/posjson/pkg/types"
	"github.com/spf13/cobra"
)

var (
	parseFormat   string
	parseOutput   string
	parseEncoding string
	parseStore    string
	parseColor    string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file|->",
	Short: "Parse one feed file",
	Long: `Parse one positional feed file and print the assembled records.

Formats:
  json   the record tree only (what "Download JSON" produced)
  full   record tree, raw lines, and field violations
  table  an indented human-readable tree
  xlsx   a workbook with one sheet per record kind (requires --output)

Use - to read the feed from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseFormat, "format", "json", "Output format: json, full, table, xlsx")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "Write output to a file instead of stdout")
	parseCmd.Flags().StringVar(&parseEncoding, "encoding", enum.DefaultEncoding, "Character encoding of the feed file")
	parseCmd.Flags().StringVar(&parseStore, "store", "", "Also record the parse in this database")
	parseCmd.Flags().StringVar(&parseColor, "color", "auto", "Color output for table format: auto, always, never")
}

func runParse(cmd *cobra.Command, args []string) error {
	target := args[0]

	switch parseFormat {
	case "json", "full", "table":
	case "xlsx":
		if parseOutput == "" {
			return fmt.Errorf("xlsx format requires --output")
		}
	default:
		return fmt.Errorf("unknown output format: %s", parseFormat)
	}

	content, prov, err := readFeed(cmd, target)
	if err != nil {
		return err
	}

	text, err := enum.DecodeText(content, parseEncoding)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", prov.Path(), err)
	}

	layouts, err := loadLayouts(layoutsPath)
	if err != nil {
		return err
	}

	cfg := engine.Config{
		Layouts: layouts,
		Logger:  debugLogger(cmd),
		NoStore: parseStore == "",
	}
	if parseStore != "" {
		cfg.Store, err = store.New(store.Config{Path: parseStore})
		if err != nil {
			return fmt.Errorf("creating store: %w", err)
		}
	}

	core, err := engine.New(cfg)
	if err != nil {
		if cfg.Store != nil {
			cfg.Store.Close()
		}
		return fmt.Errorf("creating engine: %w", err)
	}
	defer core.Close()

	out, err := core.ParseDocument(text, prov)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", prov.Path(), err)
	}

	if parseStore != "" {
		statusf(cmd, "Stored %s as %s in %s\n", prov.Path(), out.DocumentID.Short(), parseStore)
	}

	w := cmd.OutOrStdout()
	if parseOutput != "" {
		f, err := os.Create(parseOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeResult(w, out.ParseResult, parseFormat); err != nil {
		return err
	}

	if parseOutput != "" {
		statusf(cmd, "Parsed %s: %s\n", prov.Path(), formatStats(out.Stats))
		statusf(cmd, "Output: %s\n", parseOutput)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// readFeed reads the raw bytes of target, or stdin for "-".
func readFeed(cmd *cobra.Command, target string) ([]byte, types.Provenance, error) {
	if target == "-" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, nil, fmt.Errorf("reading stdin: %w", err)
		}
		return content, types.InlineProvenance{Source: "stdin"}, nil
	}

	content, err := os.ReadFile(target)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", target, err)
	}
	return content, types.FileProvenance{FilePath: target}, nil
}

func writeResult(w io.Writer, res *types.ParseResult, format string) error {
	switch format {
	case "json":
		return export.WriteJSON(w, res, export.ModeResult)
	case "full":
		return export.WriteJSON(w, res, export.ModeFull)
	case "xlsx":
		return export.WriteXLSX(w, res)
	case "table":
		enabled, err := resolveColor(parseColor)
		if err != nil {
			return err
		}
		renderTree(w, res, newStyles(enabled))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
