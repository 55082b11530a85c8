package layout

import (
	"fmt"
	"unicode/utf8"

	"github.com/praetorian-inc/posjson/pkg/types"
)

// ValidateLayout checks layout consistency and required fields.
// Returns error if layout is invalid.
func ValidateLayout(l *types.Layout) error {
	if l == nil {
		return fmt.Errorf("layout is nil")
	}

	if utf8.RuneCountInString(l.Discriminator) != 1 {
		return fmt.Errorf("layout record type must be a single character, got %q", l.Discriminator)
	}

	seen := make(map[string]bool, len(l.Fields))
	for i, f := range l.Fields {
		if f.Name == "" {
			return fmt.Errorf("layout %s: field %d has no name", l.Discriminator, i+1)
		}
		if seen[f.Name] {
			return fmt.Errorf("layout %s contains duplicate field name: %s", l.Discriminator, f.Name)
		}
		seen[f.Name] = true

		if f.StartOffset < 0 || f.EndOffset < 0 {
			return fmt.Errorf("layout %s: field %s has a negative offset", l.Discriminator, f.Name)
		}
		if f.Active() && f.EndOffset < f.StartOffset {
			return fmt.Errorf("layout %s: field %s ends (%d) before it starts (%d)",
				l.Discriminator, f.Name, f.EndOffset, f.StartOffset)
		}
		if f.DecimalScale != nil && *f.DecimalScale < 0 {
			return fmt.Errorf("layout %s: field %s has negative decimal scale", l.Discriminator, f.Name)
		}
	}

	return nil
}

// ValidateLayoutSet validates every layout and checks that each is filed
// under its own record type.
func ValidateLayoutSet(set types.LayoutSet) error {
	if len(set) == 0 {
		return fmt.Errorf("layout set is empty")
	}
	for _, key := range set.Discriminators() {
		l := set[key]
		if err := ValidateLayout(l); err != nil {
			return err
		}
		if l.Discriminator != key {
			return fmt.Errorf("layout %s is registered under record type %s", l.Discriminator, key)
		}
	}
	return nil
}

// Overlaps reports pairs of active fields whose column ranges intersect.
// Overlaps are legal (some feeds alias a range) but usually a sheet typo.
func Overlaps(l *types.Layout) [][2]string {
	var out [][2]string
	for i := 0; i < len(l.Fields); i++ {
		a := l.Fields[i]
		if !a.Active() {
			continue
		}
		for j := i + 1; j < len(l.Fields); j++ {
			b := l.Fields[j]
			if !b.Active() {
				continue
			}
			if a.StartOffset <= b.EndOffset && b.StartOffset <= a.EndOffset {
				out = append(out, [2]string{a.Name, b.Name})
			}
		}
	}
	return out
}
