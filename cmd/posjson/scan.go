package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/praetorian-inc/posjson/pkg/engine"
	"github.com/praetorian-inc/posjson/pkg/enum"
	"github.com/praetorian-inc/posjson/pkg/store"
	"github.com/praetorian-inc/posjson/pkg/types"
	"github.com/spf13/cobra"
)

var (
	scanOutputPath    string
	scanOutputFormat  string
	scanMaxFileSize   int64
	scanIncludeHidden bool
	scanIncremental   bool
	scanExtensions    string
	scanEncoding      string
	scanWorkers       int
)

var scanCmd = &cobra.Command{
	Use:   "scan <target>",
	Short: "Parse every feed file under a target",
	Long:  "Parse a feed file or every feed file in a directory and record the results in a database",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanOutputPath, "output", "posjson.db", "Output database path")
	scanCmd.Flags().StringVar(&scanOutputFormat, "format", "human", "Output format: json, human")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 10*1024*1024, "Maximum file size to parse (bytes)")
	scanCmd.Flags().BoolVar(&scanIncludeHidden, "include-hidden", false, "Include hidden files and directories")
	scanCmd.Flags().BoolVar(&scanIncremental, "incremental", false, "Skip documents already in the database")
	scanCmd.Flags().StringVar(&scanExtensions, "ext", "", "Only parse files with these extensions (comma-separated, e.g. txt,dat)")
	scanCmd.Flags().StringVar(&scanEncoding, "encoding", enum.DefaultEncoding, "Character encoding of the feed files")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Number of parallel file readers (0 = number of CPUs)")
}

// scanCounts is updated from concurrent enumerator callbacks.
type scanCounts struct {
	mu      sync.Mutex
	parsed  int
	skipped int
	totals  types.Stats
}

func (c *scanCounts) add(st types.Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parsed++
	c.totals.Headers += st.Headers
	c.totals.LineItems += st.LineItems
	c.totals.Details += st.Details
	c.totals.Installments += st.Installments
	c.totals.Lines += st.Lines
	c.totals.Violations += st.Violations
}

func (c *scanCounts) skip() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped++
}

func runScan(cmd *cobra.Command, args []string) error {
	target := args[0]

	// Validate target exists
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("target does not exist: %s", target)
	}
	if scanOutputFormat != "json" && scanOutputFormat != "human" {
		return fmt.Errorf("unknown output format: %s", scanOutputFormat)
	}

	layouts, err := loadLayouts(layoutsPath)
	if err != nil {
		return err
	}

	// Create store
	s, err := store.New(store.Config{
		Path: scanOutputPath,
	})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}

	core, err := engine.New(engine.Config{
		Layouts: layouts,
		Store:   s,
		Logger:  debugLogger(cmd),
	})
	if err != nil {
		s.Close()
		return fmt.Errorf("creating engine: %w", err)
	}
	defer core.Close()

	enumerator := enum.NewFilesystemEnumerator(enum.Config{
		Root:           target,
		IncludeHidden:  scanIncludeHidden,
		MaxFileSize:    scanMaxFileSize,
		FollowSymlinks: false,
		Extensions:     splitList(scanExtensions),
		Encoding:       scanEncoding,
		Workers:        scanWorkers,
	})

	// Scan
	counts := &scanCounts{}
	err = enumerator.Enumerate(context.Background(), func(text string, id types.DocumentID, prov types.Provenance) error {
		// Check for incremental scanning
		if scanIncremental {
			exists, err := s.DocumentExists(id)
			if err != nil {
				return fmt.Errorf("checking document: %w", err)
			}
			if exists {
				counts.skip()
				return nil
			}
		}

		out, err := core.ParseDocument(text, prov)
		if err != nil {
			return err
		}
		counts.add(out.Stats)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	// Summary goes to stderr for json so stdout stays pure JSON
	summary := cmd.OutOrStdout()
	if scanOutputFormat == "json" {
		summary = cmd.ErrOrStderr()
	}
	if !quiet {
		if scanIncremental {
			fmt.Fprintf(summary, "Scan complete: %d documents parsed (%d skipped)\n", counts.parsed, counts.skipped)
		} else {
			fmt.Fprintf(summary, "Scan complete: %d documents parsed\n", counts.parsed)
		}
		fmt.Fprintf(summary, "Totals: %s\n", formatStats(counts.totals))
		fmt.Fprintf(summary, "Results stored in: %s\n", scanOutputPath)
	}

	docs, err := s.GetDocuments()
	if err != nil {
		return fmt.Errorf("retrieving documents: %w", err)
	}
	return outputDocuments(cmd, docs)
}

// =============================================================================
// HELPERS
// =============================================================================

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func outputDocuments(cmd *cobra.Command, docs []*types.Document) error {
	switch scanOutputFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(docs)
	case "human":
		if len(docs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\nNo documents.\n")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\nDocuments:\n")
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSOURCE\tHEADERS\tITEMS\tINSTALLMENTS\tVIOLATIONS")
		for _, d := range docs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
				d.ID.Short(), d.Source, d.Stats.Headers, d.Stats.LineItems, d.Stats.Installments, d.Stats.Violations)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown output format: %s", scanOutputFormat)
	}
}
