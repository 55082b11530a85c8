package types

// Provenance tracks where a document came from.
type Provenance interface {
	Kind() string
	// Path returns displayable path (if applicable)
	Path() string
}

// FileProvenance for filesystem files.
type FileProvenance struct {
	FilePath string
}

// Kind returns "file".
func (f FileProvenance) Kind() string {
	return "file"
}

// Path returns the file path.
func (f FileProvenance) Path() string {
	return f.FilePath
}

// InlineProvenance for content handed over directly, e.g. through the
// streaming server or stdin.
type InlineProvenance struct {
	Source string
}

// Kind returns "inline".
func (i InlineProvenance) Kind() string {
	return "inline"
}

// Path returns the caller-supplied source label.
func (i InlineProvenance) Path() string {
	return i.Source
}
