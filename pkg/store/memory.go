package store

import (
	"sort"
	"sync"

	"github.com/praetorian-inc/posjson/pkg/types"
)

// memoryResult is the stored result of one document.
type memoryResult struct {
	headers    []*types.HeaderRecord
	violations []types.FieldViolation
	rawLines   []types.RawLine
}

// MemoryStore implements Store using in-memory data structures.
// Used by the streaming server and tests, where nothing needs to survive
// the process.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string]*types.Document // keyed by DocumentID.Hex()
	results   map[string]memoryResult    // keyed by DocumentID.Hex()
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string]*types.Document),
		results:   make(map[string]memoryResult),
	}
}

// AddDocument stores a document row.
func (m *MemoryStore) AddDocument(doc *types.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := *doc
	m.documents[doc.ID.Hex()] = &d
	return nil
}

// AddResult stores a parse result, replacing any previous one.
func (m *MemoryStore) AddResult(id types.DocumentID, res *types.ParseResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.results[id.Hex()] = memoryResult{
		headers:    append([]*types.HeaderRecord{}, res.Result...),
		violations: append([]types.FieldViolation{}, res.Errors...),
		rawLines:   append([]types.RawLine{}, res.RawLines...),
	}
	return nil
}

// DocumentExists checks if a document has already been parsed.
func (m *MemoryStore) DocumentExists(id types.DocumentID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.documents[id.Hex()]
	return exists, nil
}

// GetDocuments retrieves all documents ordered by source.
func (m *MemoryStore) GetDocuments() ([]*types.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Document, 0, len(m.documents))
	for _, doc := range m.documents {
		d := *doc
		result = append(result, &d)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Source != result[j].Source {
			return result[i].Source < result[j].Source
		}
		return result[i].ID.Hex() < result[j].ID.Hex()
	})
	return result, nil
}

// GetHeaders retrieves the record tree of a document.
func (m *MemoryStore) GetHeaders(id types.DocumentID) ([]*types.HeaderRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to avoid external modifications
	return append([]*types.HeaderRecord{}, m.results[id.Hex()].headers...), nil
}

// GetViolations retrieves the violations of a document.
func (m *MemoryStore) GetViolations(id types.DocumentID) ([]types.FieldViolation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]types.FieldViolation{}, m.results[id.Hex()].violations...), nil
}

// GetRawLines retrieves the raw lines of a document.
func (m *MemoryStore) GetRawLines(id types.DocumentID) ([]types.RawLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]types.RawLine{}, m.results[id.Hex()].rawLines...), nil
}

// Close closes the database connection.
// For in-memory store, this is a no-op.
func (m *MemoryStore) Close() error {
	// No resources to clean up for in-memory store
	return nil
}
