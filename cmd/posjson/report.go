package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/praetorian-inc/posjson/pkg/store"
	"github.com/praetorian-inc/posjson/pkg/types"
	"github.com/spf13/cobra"
)

var (
	reportDatastore  string
	reportFormat     string
	reportColor      string
	reportDocument   string
	reportViolations int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report from parse results",
	Long:  "Read parsed documents from a database and output a summary report",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDatastore, "datastore", "posjson.db", "Path to the database file")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
	reportCmd.Flags().StringVar(&reportDocument, "document", "", "Show the full record tree of one document (ID or ID prefix)")
	reportCmd.Flags().IntVar(&reportViolations, "violations", 5, "Violations to list per document in human output (0 = all)")
}

// documentReport is the JSON form of one stored document.
type documentReport struct {
	*types.Document
	Violations []types.FieldViolation `json:"violations"`
	Result     []*types.HeaderRecord  `json:"result,omitempty"`
}

func runReport(cmd *cobra.Command, args []string) error {
	storePath := reportDatastore

	if storePath == ":memory:" {
		return fmt.Errorf("cannot report from in-memory store")
	}
	if _, err := os.Stat(storePath); err != nil {
		return fmt.Errorf("datastore not found: %s", storePath)
	}

	s, err := store.New(store.Config{
		Path: storePath,
	})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer s.Close()

	docs, err := s.GetDocuments()
	if err != nil {
		return fmt.Errorf("retrieving documents: %w", err)
	}

	if reportDocument != "" {
		doc, err := findDocument(docs, reportDocument)
		if err != nil {
			return err
		}
		docs = []*types.Document{doc}
	}

	reports := make([]*documentReport, 0, len(docs))
	for _, d := range docs {
		violations, err := s.GetViolations(d.ID)
		if err != nil {
			return fmt.Errorf("retrieving violations for %s: %w", d.ID.Short(), err)
		}
		r := &documentReport{Document: d, Violations: violations}
		if reportDocument != "" {
			headers, err := s.GetHeaders(d.ID)
			if err != nil {
				return fmt.Errorf("retrieving headers for %s: %w", d.ID.Short(), err)
			}
			r.Result = headers
		}
		reports = append(reports, r)
	}

	switch reportFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(reports)
	case "human":
		enabled, err := resolveColor(reportColor)
		if err != nil {
			return err
		}
		return outputReportHuman(cmd, reports, storePath, newStyles(enabled))
	default:
		return fmt.Errorf("unknown output format: %s", reportFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// findDocument resolves a full or abbreviated document ID.
func findDocument(docs []*types.Document, prefix string) (*types.Document, error) {
	prefix = strings.ToLower(prefix)
	var found *types.Document
	for _, d := range docs {
		if !strings.HasPrefix(d.ID.Hex(), prefix) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("document ID %q is ambiguous", prefix)
		}
		found = d
	}
	if found == nil {
		return nil, fmt.Errorf("document not found: %s", prefix)
	}
	return found, nil
}

func outputReportHuman(cmd *cobra.Command, reports []*documentReport, storePath string, s *styles) error {
	out := cmd.OutOrStdout()

	if len(reports) == 0 {
		fmt.Fprintf(out, "No documents in %s.\n", storePath)
		return nil
	}

	var totals types.Stats
	for i, r := range reports {
		fmt.Fprintf(out, "%s %s\n",
			s.heading.Sprintf("Document %d/%d", i+1, len(reports)),
			s.id.Sprintf("(id %s)", r.ID.Short()))
		fmt.Fprintf(out, "%s %s\n", s.metadata.Sprint("Source:"), r.Source)
		fmt.Fprintf(out, "%s %s\n", s.metadata.Sprint("Parsed:"), r.ParsedAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(out, "%s %s\n", s.metadata.Sprint("Records:"), formatStats(r.Stats))

		if r.Result != nil {
			fmt.Fprintln(out)
			renderTree(out, &types.ParseResult{Result: r.Result, Errors: r.Violations}, s)
		} else {
			renderViolations(out, r.Violations, reportViolations, s)
		}
		fmt.Fprintln(out)

		totals.Headers += r.Stats.Headers
		totals.LineItems += r.Stats.LineItems
		totals.Details += r.Stats.Details
		totals.Installments += r.Stats.Installments
		totals.Lines += r.Stats.Lines
		totals.Violations += r.Stats.Violations
	}

	if len(reports) > 1 {
		fmt.Fprintf(out, "%s %d documents, %s\n", s.heading.Sprint("Total:"), len(reports), formatStats(totals))
	}
	return nil
}
