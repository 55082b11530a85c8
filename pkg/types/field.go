package types

import "fmt"

// DefaultDecimalScale is the implied number of fraction digits for decimal
// fields whose descriptor does not set one.
const DefaultDecimalScale = 2

// SemanticType selects how a raw field substring is decoded.
type SemanticType int

const (
	TypeCharacter SemanticType = iota // trimmed text, the default
	TypeDecimal                       // implied-point fixed decimal
	TypeDate                          // DDMMYYYY or DDMMYY
	TypeBoolean                       // S/SIM/1/YES flags
	TypeInteger                       // signed whole number
)

var semanticTypeNames = map[SemanticType]string{
	TypeCharacter: "character",
	TypeDecimal:   "decimal",
	TypeDate:      "date",
	TypeBoolean:   "boolean",
	TypeInteger:   "integer",
}

// String returns the lowercase type name.
func (t SemanticType) String() string {
	if name, ok := semanticTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SemanticType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t SemanticType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Only canonical names are
// accepted here; free-form descriptor strings go through layout.Classify.
func (t *SemanticType) UnmarshalText(text []byte) error {
	for k, name := range semanticTypeNames {
		if name == string(text) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown semantic type: %q", string(text))
}

// FieldDescriptor describes one column range of a positional record.
// Offsets are 1-indexed and inclusive; zero means the offset is missing.
type FieldDescriptor struct {
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Type         SemanticType `json:"type"`
	RawType      string       `json:"rawType,omitempty"` // descriptor text the type was classified from
	DecimalScale *int         `json:"decimalScale,omitempty"`
	Required     bool         `json:"required"`
	StartOffset  int          `json:"startOffset,omitempty"`
	EndOffset    int          `json:"endOffset,omitempty"`
}

// Active reports whether both offsets are present. Inactive descriptors are
// never consulted during decoding.
func (f FieldDescriptor) Active() bool {
	return f.StartOffset > 0 && f.EndOffset > 0
}

// Scale returns the decimal scale, falling back to DefaultDecimalScale.
func (f FieldDescriptor) Scale() int {
	if f.DecimalScale == nil {
		return DefaultDecimalScale
	}
	return *f.DecimalScale
}

// Width returns the number of columns covered, or 0 for inactive descriptors.
func (f FieldDescriptor) Width() int {
	if !f.Active() || f.EndOffset < f.StartOffset {
		return 0
	}
	return f.EndOffset - f.StartOffset + 1
}
