package store

import (
	"fmt"

	"github.com/praetorian-inc/posjson/pkg/types"
)

// Store provides persistence for parse runs.
// This interface abstracts the underlying storage implementation,
// allowing for different backends (SQLite, in-memory).
type Store interface {
	// AddDocument stores a document row. Re-adding an ID refreshes the row.
	AddDocument(doc *types.Document) error

	// AddResult stores the record tree, violations, and raw lines of a
	// document, replacing whatever was stored for it before.
	AddResult(id types.DocumentID, res *types.ParseResult) error

	// DocumentExists checks if a document has already been parsed.
	DocumentExists(id types.DocumentID) (bool, error)

	// GetDocuments retrieves all documents ordered by source.
	GetDocuments() ([]*types.Document, error)

	// GetHeaders retrieves the record tree of a document in input order.
	GetHeaders(id types.DocumentID) ([]*types.HeaderRecord, error)

	// GetViolations retrieves the violations of a document in line order.
	GetViolations(id types.DocumentID) ([]types.FieldViolation, error)

	// GetRawLines retrieves the raw lines of a document in line order.
	GetRawLines(id types.DocumentID) ([]types.RawLine, error)

	// Close closes the database connection.
	Close() error
}

// Config for store initialization.
type Config struct {
	// Path is the database file path.
	// Use ":memory:" for a non-persistent in-memory store.
	Path string
}

// LoadResult rebuilds the full parse result of a stored document. Field
// values come back as their JSON forms (numbers as json.Number).
func LoadResult(s Store, id types.DocumentID) (*types.ParseResult, error) {
	res := types.NewParseResult()

	headers, err := s.GetHeaders(id)
	if err != nil {
		return nil, fmt.Errorf("loading headers: %w", err)
	}
	rawLines, err := s.GetRawLines(id)
	if err != nil {
		return nil, fmt.Errorf("loading raw lines: %w", err)
	}
	violations, err := s.GetViolations(id)
	if err != nil {
		return nil, fmt.Errorf("loading violations: %w", err)
	}

	res.Result = append(res.Result, headers...)
	res.RawLines = append(res.RawLines, rawLines...)
	res.Errors = append(res.Errors, violations...)
	return res, nil
}
