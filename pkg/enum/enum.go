package enum

import (
	"context"

	"github.com/praetorian-inc/posjson/pkg/types"
)

// Callback receives the decoded text of one feed file, its ID, and where it
// came from. Returning an error stops enumeration.
type Callback func(text string, id types.DocumentID, prov types.Provenance) error

// Enumerator discovers feed files to parse from a source.
type Enumerator interface {
	Enumerate(ctx context.Context, callback Callback) error
}

// Config for enumeration.
type Config struct {
	// Root is the starting path for enumeration. It may be a single file.
	Root string

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// MaxFileSize is the maximum file size to process (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks follows symbolic links.
	FollowSymlinks bool

	// Extensions limits enumeration to these file extensions
	// (case-insensitive, with or without the dot). Empty means all files.
	Extensions []string

	// Encoding is the charset label of the feed files. Empty means
	// DefaultEncoding.
	Encoding string

	// Workers is the number of parallel readers (0 = NumCPU).
	Workers int
}
