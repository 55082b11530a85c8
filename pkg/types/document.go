package types

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// DocumentID is the SHA-256 of a feed file's decoded text. Two uploads of the
// same export share an ID, which is what incremental scans key on.
type DocumentID [32]byte

// ComputeDocumentID hashes decoded feed text.
func ComputeDocumentID(text string) DocumentID {
	return DocumentID(sha256.Sum256([]byte(text)))
}

// Hex returns the 64-character hex form.
func (id DocumentID) Hex() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first 12 hex characters for display.
func (id DocumentID) Short() string {
	return id.Hex()[:12]
}

// String implements Stringer (returns Hex()).
func (id DocumentID) String() string {
	return id.Hex()
}

// ParseDocumentID parses a 64-character hex string.
func ParseDocumentID(hexStr string) (DocumentID, error) {
	if len(hexStr) != 64 {
		return DocumentID{}, fmt.Errorf("invalid document ID length: expected 64, got %d", len(hexStr))
	}

	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return DocumentID{}, fmt.Errorf("invalid hex string: %w", err)
	}

	var id DocumentID
	copy(id[:], decoded)
	return id, nil
}

// MarshalJSON implements json.Marshaler.
func (id DocumentID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *DocumentID) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}

	parsed, err := ParseDocumentID(hexStr)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// Value implements driver.Valuer for SQL serialization.
func (id DocumentID) Value() (driver.Value, error) {
	return id.Hex(), nil
}

// Scan implements sql.Scanner for SQL deserialization.
func (id *DocumentID) Scan(value any) error {
	var hexStr string
	switch v := value.(type) {
	case string:
		hexStr = v
	case []byte:
		hexStr = string(v)
	default:
		return fmt.Errorf("cannot scan type %T into DocumentID", value)
	}

	parsed, err := ParseDocumentID(hexStr)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// Document is the bookkeeping row for one parsed feed file.
type Document struct {
	ID       DocumentID `json:"id"`
	Source   string     `json:"source"`
	Kind     string     `json:"kind"` // provenance kind
	Size     int64      `json:"size"`
	ParsedAt time.Time  `json:"parsedAt"`
	Stats    Stats      `json:"stats"`
}

// NewDocument builds the bookkeeping row for a parse of text.
func NewDocument(text string, prov Provenance, res *ParseResult) *Document {
	return &Document{
		ID:       ComputeDocumentID(text),
		Source:   prov.Path(),
		Kind:     prov.Kind(),
		Size:     int64(len(text)),
		ParsedAt: time.Now().UTC(),
		Stats:    res.Stats(),
	}
}
