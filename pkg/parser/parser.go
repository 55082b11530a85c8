// Package parser drives a full parse of positional feed text.
package parser

import (
	"strings"

	"github.com/praetorian-inc/posjson/pkg/assembler"
	"github.com/praetorian-inc/posjson/pkg/decoder"
	"github.com/praetorian-inc/posjson/pkg/types"
)

// Parse splits text into lines, decodes each line whose discriminator has a
// layout, and assembles the record tree. It never fails and keeps no state
// between calls, so concurrent calls are safe as long as layouts is not
// mutated.
func Parse(text string, layouts types.LayoutSet) *types.ParseResult {
	res := types.NewParseResult()
	var decoded []types.DecodedLine

	for i, line := range SplitLines(text) {
		lineNumber := i + 1
		disc := decoder.Discriminator(line)
		res.RawLines = append(res.RawLines, types.RawLine{
			LineNumber:    lineNumber,
			Text:          line,
			Discriminator: disc,
		})

		layout := layouts.Lookup(disc)
		if layout == nil {
			continue
		}

		fields, violations := decoder.DecodeLine(lineNumber, line, layout)
		res.Errors = append(res.Errors, violations...)
		decoded = append(decoded, fields)
	}

	res.Result = assembler.Assemble(layouts, decoded)
	return res
}

// SplitLines splits on "\n" and drops one trailing "\r" per line, so both
// LF and CRLF files number lines the same way. Empty lines are kept; empty
// input has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
