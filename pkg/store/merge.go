//go:build !wasm

package store

import (
	"database/sql"
	"fmt"
	"os"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the database files to merge from.
	SourcePaths []string
	// DestPath is the destination database file.
	DestPath string
}

// MergeStats tracks merge operation statistics.
type MergeStats struct {
	DocumentsMerged  int
	DocumentsSkipped int
	HeadersMerged    int
	ViolationsMerged int
	RawLinesMerged   int
	SourcesProcessed int
}

// Merge combines multiple posjson databases into one.
// Documents are deduplicated by ID: a document already present in the
// destination keeps its stored result and the source copy is skipped.
func Merge(cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, fmt.Errorf("no source databases specified")
	}
	if cfg.DestPath == "" {
		return nil, fmt.Errorf("destination path is required")
	}

	// Open/create destination database
	destDB, err := openSQLite(cfg.DestPath)
	if err != nil {
		return nil, fmt.Errorf("opening destination database: %w", err)
	}
	defer destDB.Close()

	// Initialize schema on destination
	if err := CreateSchema(destDB); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	stats := &MergeStats{}

	// Process each source database
	for _, sourcePath := range cfg.SourcePaths {
		sourceStats, err := mergeFrom(destDB, sourcePath)
		if err != nil {
			return stats, fmt.Errorf("merging from %s: %w", sourcePath, err)
		}
		stats.DocumentsMerged += sourceStats.DocumentsMerged
		stats.DocumentsSkipped += sourceStats.DocumentsSkipped
		stats.HeadersMerged += sourceStats.HeadersMerged
		stats.ViolationsMerged += sourceStats.ViolationsMerged
		stats.RawLinesMerged += sourceStats.RawLinesMerged
		stats.SourcesProcessed++
	}

	return stats, nil
}

// mergeFrom copies data from a source database to the destination.
func mergeFrom(destDB *sql.DB, sourcePath string) (*MergeStats, error) {
	// sql.Open would silently create an empty database for a typo
	if _, err := os.Stat(sourcePath); err != nil {
		return nil, fmt.Errorf("source database: %w", err)
	}

	sourceDB, err := openSQLite(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening source database: %w", err)
	}
	defer sourceDB.Close()

	version, err := ReadSchemaVersion(sourceDB)
	if err != nil {
		return nil, err
	}
	if version != SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d (expected %d)", version, SchemaVersion)
	}

	stats := &MergeStats{}

	// Start transaction for efficiency
	tx, err := destDB.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	merged, skipped, err := mergeDocuments(tx, sourceDB)
	if err != nil {
		return nil, fmt.Errorf("merging documents: %w", err)
	}
	stats.DocumentsMerged = len(merged)
	stats.DocumentsSkipped = skipped

	stats.HeadersMerged, err = copyRows(tx, sourceDB, merged,
		"SELECT document_id, seq, record_json FROM headers ORDER BY document_id, seq",
		"INSERT OR IGNORE INTO headers (document_id, seq, record_json) VALUES (?, ?, ?)",
		3)
	if err != nil {
		return nil, fmt.Errorf("merging headers: %w", err)
	}

	stats.ViolationsMerged, err = copyRows(tx, sourceDB, merged,
		"SELECT document_id, line_number, field_name, reason FROM violations ORDER BY id",
		"INSERT OR IGNORE INTO violations (document_id, line_number, field_name, reason) VALUES (?, ?, ?, ?)",
		4)
	if err != nil {
		return nil, fmt.Errorf("merging violations: %w", err)
	}

	stats.RawLinesMerged, err = copyRows(tx, sourceDB, merged,
		"SELECT document_id, line_number, text, discriminator FROM raw_lines",
		"INSERT OR IGNORE INTO raw_lines (document_id, line_number, text, discriminator) VALUES (?, ?, ?, ?)",
		4)
	if err != nil {
		return nil, fmt.Errorf("merging raw lines: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return stats, nil
}

// mergeDocuments inserts source documents missing from the destination and
// returns the IDs that were inserted.
func mergeDocuments(tx *sql.Tx, sourceDB *sql.DB) (map[string]bool, int, error) {
	rows, err := sourceDB.Query(`
		SELECT id, source, kind, size, parsed_at,
			headers, line_items, details, installments, lines, violations
		FROM documents
	`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO documents (id, source, kind, size, parsed_at,
			headers, line_items, details, installments, lines, violations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, 0, err
	}
	defer stmt.Close()

	merged := make(map[string]bool)
	skipped := 0
	for rows.Next() {
		var id, source, kind, parsedAt string
		var size int64
		var headers, lineItems, details, installments, lines, violations int
		if err := rows.Scan(&id, &source, &kind, &size, &parsedAt,
			&headers, &lineItems, &details, &installments, &lines, &violations); err != nil {
			return merged, skipped, err
		}
		result, err := stmt.Exec(id, source, kind, size, parsedAt,
			headers, lineItems, details, installments, lines, violations)
		if err != nil {
			return merged, skipped, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			merged[id] = true
		} else {
			skipped++
		}
	}
	return merged, skipped, rows.Err()
}

// copyRows copies rows whose first column is a merged document ID.
func copyRows(tx *sql.Tx, sourceDB *sql.DB, merged map[string]bool, query, insert string, columns int) (int, error) {
	if len(merged) == 0 {
		return 0, nil
	}

	rows, err := sourceDB.Query(query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare(insert)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	values := make([]any, columns)
	ptrs := make([]any, columns)
	for i := range values {
		ptrs[i] = &values[i]
	}

	count := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return count, err
		}
		docID, _ := values[0].(string)
		if !merged[docID] {
			continue
		}
		result, err := stmt.Exec(values...)
		if err != nil {
			return count, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}
