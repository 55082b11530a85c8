//go:build !wasm

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/praetorian-inc/posjson/pkg/types"
	_ "modernc.org/sqlite"
)

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}

	// Initialize schema
	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// openSQLite opens a single-connection database. One connection keeps
// ":memory:" databases alive across calls and serializes writers.
func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring database: %w", err)
	}
	return db, nil
}

// AddDocument stores a document row.
func (s *SQLiteStore) AddDocument(doc *types.Document) error {
	_, err := s.db.Exec(`
		INSERT INTO documents (id, source, kind, size, parsed_at,
			headers, line_items, details, installments, lines, violations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			kind = excluded.kind,
			size = excluded.size,
			parsed_at = excluded.parsed_at,
			headers = excluded.headers,
			line_items = excluded.line_items,
			details = excluded.details,
			installments = excluded.installments,
			lines = excluded.lines,
			violations = excluded.violations
	`,
		doc.ID.Hex(),
		doc.Source,
		doc.Kind,
		doc.Size,
		doc.ParsedAt.UTC().Format(time.RFC3339Nano),
		doc.Stats.Headers,
		doc.Stats.LineItems,
		doc.Stats.Details,
		doc.Stats.Installments,
		doc.Stats.Lines,
		doc.Stats.Violations,
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// AddResult stores a parse result in a single transaction.
func (s *SQLiteStore) AddResult(id types.DocumentID, res *types.ParseResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	docID := id.Hex()
	for _, table := range []string{"headers", "violations", "raw_lines"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE document_id = ?", docID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := insertHeaders(tx, docID, res.Result); err != nil {
		return err
	}
	if err := insertViolations(tx, docID, res.Errors); err != nil {
		return err
	}
	if err := insertRawLines(tx, docID, res.RawLines); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func insertHeaders(tx *sql.Tx, docID string, headers []*types.HeaderRecord) error {
	stmt, err := tx.Prepare("INSERT INTO headers (document_id, seq, record_json) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing header insert: %w", err)
	}
	defer stmt.Close()

	for i, h := range headers {
		recordJSON, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("marshaling header %d: %w", i, err)
		}
		if _, err := stmt.Exec(docID, i, string(recordJSON)); err != nil {
			return fmt.Errorf("inserting header: %w", err)
		}
	}
	return nil
}

func insertViolations(tx *sql.Tx, docID string, violations []types.FieldViolation) error {
	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO violations (document_id, line_number, field_name, reason)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing violation insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range violations {
		if _, err := stmt.Exec(docID, v.LineNumber, v.FieldName, v.Reason); err != nil {
			return fmt.Errorf("inserting violation: %w", err)
		}
	}
	return nil
}

func insertRawLines(tx *sql.Tx, docID string, lines []types.RawLine) error {
	stmt, err := tx.Prepare(`
		INSERT INTO raw_lines (document_id, line_number, text, discriminator)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing raw line insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range lines {
		if _, err := stmt.Exec(docID, l.LineNumber, l.Text, l.Discriminator); err != nil {
			return fmt.Errorf("inserting raw line: %w", err)
		}
	}
	return nil
}

// DocumentExists checks if a document has already been parsed.
func (s *SQLiteStore) DocumentExists(id types.DocumentID) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM documents WHERE id = ?", id.Hex()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking document existence: %w", err)
	}
	return count > 0, nil
}

// GetDocuments retrieves all documents ordered by source.
func (s *SQLiteStore) GetDocuments() ([]*types.Document, error) {
	rows, err := s.db.Query(`
		SELECT id, source, kind, size, parsed_at,
			headers, line_items, details, installments, lines, violations
		FROM documents
		ORDER BY source, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []*types.Document{}
	for rows.Next() {
		var d types.Document
		var parsedAt string

		err := rows.Scan(
			&d.ID,
			&d.Source,
			&d.Kind,
			&d.Size,
			&parsedAt,
			&d.Stats.Headers,
			&d.Stats.LineItems,
			&d.Stats.Details,
			&d.Stats.Installments,
			&d.Stats.Lines,
			&d.Stats.Violations,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		d.ParsedAt, err = time.Parse(time.RFC3339Nano, parsedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp for %s: %w", d.ID.Short(), err)
		}

		docs = append(docs, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// GetHeaders retrieves the record tree of a document in input order.
func (s *SQLiteStore) GetHeaders(id types.DocumentID) ([]*types.HeaderRecord, error) {
	rows, err := s.db.Query(`
		SELECT record_json FROM headers
		WHERE document_id = ?
		ORDER BY seq
	`, id.Hex())
	if err != nil {
		return nil, fmt.Errorf("querying headers: %w", err)
	}
	defer rows.Close()

	headers := []*types.HeaderRecord{}
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("scanning header: %w", err)
		}

		h := types.NewHeaderRecord(nil)
		if err := json.Unmarshal([]byte(recordJSON), h); err != nil {
			return nil, fmt.Errorf("unmarshaling header: %w", err)
		}
		headers = append(headers, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating headers: %w", err)
	}

	return headers, nil
}

// GetViolations retrieves the violations of a document in line order.
func (s *SQLiteStore) GetViolations(id types.DocumentID) ([]types.FieldViolation, error) {
	rows, err := s.db.Query(`
		SELECT line_number, field_name, reason FROM violations
		WHERE document_id = ?
		ORDER BY line_number, id
	`, id.Hex())
	if err != nil {
		return nil, fmt.Errorf("querying violations: %w", err)
	}
	defer rows.Close()

	violations := []types.FieldViolation{}
	for rows.Next() {
		var v types.FieldViolation
		if err := rows.Scan(&v.LineNumber, &v.FieldName, &v.Reason); err != nil {
			return nil, fmt.Errorf("scanning violation: %w", err)
		}
		violations = append(violations, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating violations: %w", err)
	}

	return violations, nil
}

// GetRawLines retrieves the raw lines of a document in line order.
func (s *SQLiteStore) GetRawLines(id types.DocumentID) ([]types.RawLine, error) {
	rows, err := s.db.Query(`
		SELECT line_number, text, discriminator FROM raw_lines
		WHERE document_id = ?
		ORDER BY line_number
	`, id.Hex())
	if err != nil {
		return nil, fmt.Errorf("querying raw lines: %w", err)
	}
	defer rows.Close()

	lines := []types.RawLine{}
	for rows.Next() {
		var l types.RawLine
		if err := rows.Scan(&l.LineNumber, &l.Text, &l.Discriminator); err != nil {
			return nil, fmt.Errorf("scanning raw line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating raw lines: %w", err)
	}

	return lines, nil
}

// DB returns the underlying database handle.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
