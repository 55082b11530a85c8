package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// CreateSchema creates the database schema if it doesn't exist.
func CreateSchema(db *sql.DB) error {
	// Create schema_version table
	if err := createSchemaVersionTable(db); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	// Create main tables
	if err := createDocumentsTable(db); err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}

	if err := createHeadersTable(db); err != nil {
		return fmt.Errorf("creating headers table: %w", err)
	}

	if err := createViolationsTable(db); err != nil {
		return fmt.Errorf("creating violations table: %w", err)
	}

	if err := createRawLinesTable(db); err != nil {
		return fmt.Errorf("creating raw_lines table: %w", err)
	}

	return nil
}

// ReadSchemaVersion returns the version recorded in the database.
func ReadSchemaVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func createSchemaVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Insert version if table is empty
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count)
	if err != nil {
		return err
	}

	if count == 0 {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}

	version, err := ReadSchemaVersion(db)
	if err != nil {
		return err
	}
	if version != SchemaVersion {
		return fmt.Errorf("unsupported schema version %d (expected %d)", version, SchemaVersion)
	}

	return nil
}

func createDocumentsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY NOT NULL,
			source TEXT NOT NULL,
			kind TEXT NOT NULL,
			size INTEGER NOT NULL,
			parsed_at TEXT NOT NULL,
			headers INTEGER NOT NULL DEFAULT 0,
			line_items INTEGER NOT NULL DEFAULT 0,
			details INTEGER NOT NULL DEFAULT 0,
			installments INTEGER NOT NULL DEFAULT 0,
			lines INTEGER NOT NULL DEFAULT 0,
			violations INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

func createHeadersTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS headers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT NOT NULL REFERENCES documents(id),
			seq INTEGER NOT NULL,
			record_json TEXT NOT NULL,
			UNIQUE(document_id, seq)
		)
	`)
	return err
}

func createViolationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS violations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT NOT NULL REFERENCES documents(id),
			line_number INTEGER NOT NULL,
			field_name TEXT NOT NULL,
			reason TEXT NOT NULL,
			UNIQUE(document_id, line_number, field_name)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_violations_document_id ON violations(document_id)
	`)
	return err
}

func createRawLinesTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS raw_lines (
			document_id TEXT NOT NULL REFERENCES documents(id),
			line_number INTEGER NOT NULL,
			text TEXT NOT NULL,
			discriminator TEXT NOT NULL,
			PRIMARY KEY(document_id, line_number)
		)
	`)
	return err
}
