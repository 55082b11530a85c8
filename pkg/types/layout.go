package types

import (
	"fmt"
	"sort"
)

// RecordKind is the structural role a layout's lines play in the record tree.
type RecordKind int

const (
	KindAuto        RecordKind = iota // resolved from the discriminator by DefaultKind
	KindNone                          // decoded but not assembled
	KindHeader                        // opens a new header
	KindLineItem                      // belongs to the current header
	KindInstallment                   // belongs to the current header
	KindDetail                        // belongs to the current line item
)

var recordKindNames = map[RecordKind]string{
	KindAuto:        "auto",
	KindNone:        "none",
	KindHeader:      "header",
	KindLineItem:    "line_item",
	KindInstallment: "installment",
	KindDetail:      "detail",
}

// String returns the snake_case kind name.
func (k RecordKind) String() string {
	if name, ok := recordKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("RecordKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k RecordKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty kind is
// KindAuto.
func (k *RecordKind) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*k = KindAuto
		return nil
	}
	for kind, name := range recordKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown record kind: %q", string(text))
}

// DefaultKind maps the discriminators of the Datasul feed to their roles.
func DefaultKind(discriminator string) RecordKind {
	switch discriminator {
	case "1":
		return KindHeader
	case "2":
		return KindLineItem
	case "4":
		return KindInstallment
	case "8":
		return KindDetail
	}
	return KindNone
}

// Layout is the ordered field list for one record-type discriminator.
type Layout struct {
	Discriminator string            `json:"discriminator"`
	Title         string            `json:"title,omitempty"`
	Kind          RecordKind        `json:"kind"`
	Fields        []FieldDescriptor `json:"fields"`
}

// EffectiveKind returns the kind the assembler applies: Kind, or the
// discriminator's default when Kind is KindAuto.
func (l *Layout) EffectiveKind() RecordKind {
	if l.Kind == KindAuto {
		return DefaultKind(l.Discriminator)
	}
	return l.Kind
}

// Field returns the descriptor with the given name.
func (l *Layout) Field(name string) (FieldDescriptor, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// LayoutSet maps discriminators to layouts. It is read-only during a parse.
type LayoutSet map[string]*Layout

// NewLayoutSet indexes layouts by discriminator. Later layouts replace
// earlier ones with the same discriminator.
func NewLayoutSet(layouts ...*Layout) LayoutSet {
	set := make(LayoutSet, len(layouts))
	for _, l := range layouts {
		set[l.Discriminator] = l
	}
	return set
}

// Lookup returns the layout for a discriminator, or nil.
func (s LayoutSet) Lookup(discriminator string) *Layout {
	if discriminator == "" {
		return nil
	}
	return s[discriminator]
}

// Discriminators returns the known discriminators in sorted order.
func (s LayoutSet) Discriminators() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Layouts returns the layouts sorted by discriminator.
func (s LayoutSet) Layouts() []*Layout {
	out := make([]*Layout, 0, len(s))
	for _, k := range s.Discriminators() {
		out = append(out, s[k])
	}
	return out
}
