package types

// ReasonRequiredMissing is the only violation reason the line decoder emits.
const ReasonRequiredMissing = "required field missing"

// RawLine echoes one input line, whether or not a layout matched it.
type RawLine struct {
	LineNumber    int    `json:"lineNumber"`
	Text          string `json:"text"`
	Discriminator string `json:"discriminator"`
}

// FieldViolation is an advisory, non-fatal problem with one field.
type FieldViolation struct {
	LineNumber int    `json:"lineNumber"`
	FieldName  string `json:"fieldName"`
	Reason     string `json:"reason"`
}

// ParseResult is everything one parse produces.
type ParseResult struct {
	Result   []*HeaderRecord  `json:"result"`
	RawLines []RawLine        `json:"rawLines"`
	Errors   []FieldViolation `json:"errors"`
}

// NewParseResult returns a result with empty, non-nil sequences.
func NewParseResult() *ParseResult {
	return &ParseResult{
		Result:   []*HeaderRecord{},
		RawLines: []RawLine{},
		Errors:   []FieldViolation{},
	}
}

// Stats summarizes a result.
type Stats struct {
	Headers      int `json:"headers"`
	LineItems    int `json:"lineItems"`
	Details      int `json:"details"`
	Installments int `json:"installments"`
	Lines        int `json:"lines"`
	Violations   int `json:"violations"`
}

// Stats counts records at every level of the tree.
func (r *ParseResult) Stats() Stats {
	s := Stats{
		Headers:    len(r.Result),
		Lines:      len(r.RawLines),
		Violations: len(r.Errors),
	}
	for _, h := range r.Result {
		s.LineItems += len(h.LineItems)
		s.Installments += len(h.Installments)
		for _, item := range h.LineItems {
			s.Details += len(item.Details)
		}
	}
	return s
}
