package decoder

import (
	"github.com/praetorian-inc/posjson/pkg/types"
)

// DecodeLine slices text into fields using layout. Offsets count characters,
// not bytes, and are clamped so a short line yields empty substrings.
// A nil layout yields no fields and no violations.
func DecodeLine(lineNumber int, text string, layout *types.Layout) (types.DecodedLine, []types.FieldViolation) {
	line := types.DecodedLine{
		LineNumber:    lineNumber,
		Discriminator: Discriminator(text),
		Fields:        types.Fields{},
	}
	if layout == nil {
		return line, nil
	}

	runes := []rune(text)
	var violations []types.FieldViolation
	for _, fd := range layout.Fields {
		if !fd.Active() {
			continue
		}
		value := DecodeField(Slice(runes, fd.StartOffset, fd.EndOffset), fd)
		line.Fields.Set(fd.Name, value)

		if fd.Required && isEmpty(value) {
			violations = append(violations, types.FieldViolation{
				LineNumber: lineNumber,
				FieldName:  fd.Name,
				Reason:     types.ReasonRequiredMissing,
			})
		}
	}
	return line, violations
}

// Slice returns the characters in the 1-indexed inclusive range [start, end],
// clamped to the line.
func Slice(runes []rune, start, end int) string {
	from := max(0, start-1)
	to := min(len(runes), end)
	if from >= to {
		return ""
	}
	return string(runes[from:to])
}

// Discriminator returns the first character of text, or "" for an empty line.
func Discriminator(text string) string {
	for _, r := range text {
		return string(r)
	}
	return ""
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
