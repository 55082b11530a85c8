package engine

import "github.com/praetorian-inc/posjson/pkg/types"

// ContentItem represents one feed to parse
type ContentItem struct {
	Source   string            `json:"source"`   // e.g., file name or upload label
	Content  string            `json:"content"`  // the decoded feed text
	Metadata map[string]string `json:"metadata"` // optional metadata
}

// ParseOutput is the result of parsing one feed
type ParseOutput struct {
	Source     string           `json:"source"`
	DocumentID types.DocumentID `json:"documentId"`
	Stats      types.Stats      `json:"stats"`
	*types.ParseResult
}

// BatchFailure records a batch item that could not be parsed or stored
type BatchFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// BatchParseResult represents batch parse results, in input order
type BatchParseResult struct {
	Results  []*ParseOutput `json:"results"`
	Failures []BatchFailure `json:"failures"`
	Totals   types.Stats    `json:"totals"`
}

// addStats accumulates another feed's stats into s.
func addStats(s *types.Stats, o types.Stats) {
	s.Headers += o.Headers
	s.LineItems += o.LineItems
	s.Details += o.Details
	s.Installments += o.Installments
	s.Lines += o.Lines
	s.Violations += o.Violations
}
