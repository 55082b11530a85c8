package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/praetorian-inc/posjson/pkg/types"
	"golang.org/x/term"
)

// styles holds color formatters for human output
type styles struct {
	heading   *color.Color
	id        *color.Color
	kind      *color.Color
	fieldName *color.Color
	value     *color.Color
	nullValue *color.Color
	warning   *color.Color
	metadata  *color.Color
}

// newStyles creates color formatters for human output
// enabled=false respects --color never and NO_COLOR env var
func newStyles(enabled bool) *styles {
	s := &styles{
		heading:   color.New(color.Bold, color.FgHiWhite),
		id:        color.New(color.FgHiGreen),
		kind:      color.New(color.Bold, color.FgHiBlue),
		fieldName: color.New(color.FgCyan),
		value:     color.New(color.FgYellow),
		nullValue: color.New(color.Faint),
		warning:   color.New(color.FgHiRed),
		metadata:  color.New(color.FgHiBlue),
	}

	if !enabled {
		for _, c := range []*color.Color{s.heading, s.id, s.kind, s.fieldName, s.value, s.nullValue, s.warning, s.metadata} {
			c.DisableColor()
		}
	}

	return s
}

// resolveColor applies a --color mode to the global color switch and
// returns whether colors are on.
func resolveColor(mode string) (bool, error) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto", "":
		// Check if stdout is a TTY and NO_COLOR is not set
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NO_COLOR") != ""
	default:
		return false, fmt.Errorf("unknown color mode: %s (expected auto, always, never)", mode)
	}
	return !color.NoColor, nil
}

// renderTree prints a parse result as an indented record tree followed by
// its violations.
func renderTree(out io.Writer, res *types.ParseResult, s *styles) {
	if len(res.Result) == 0 {
		fmt.Fprintf(out, "No records.\n")
	}

	for hi, h := range res.Result {
		label := fmt.Sprintf("Header %d/%d", hi+1, len(res.Result))
		if h.Orphan {
			label += " (orphan)"
		}
		fmt.Fprintf(out, "%s\n", s.heading.Sprint(label))
		renderFields(out, "  ", h.Fields, s)

		for ii, item := range h.LineItems {
			label := fmt.Sprintf("Line item %d", ii+1)
			if item.Placeholder {
				label += " (placeholder)"
			}
			fmt.Fprintf(out, "  %s\n", s.kind.Sprint(label))
			renderFields(out, "    ", item.Fields, s)

			for di, d := range item.Details {
				fmt.Fprintf(out, "    %s\n", s.kind.Sprintf("Detail %d", di+1))
				renderFields(out, "      ", d.Fields, s)
			}
		}

		for ni, inst := range h.Installments {
			fmt.Fprintf(out, "  %s\n", s.kind.Sprintf("Installment %d", ni+1))
			renderFields(out, "    ", inst.Fields, s)
		}
	}

	renderViolations(out, res.Errors, 0, s)
}

func renderFields(out io.Writer, indent string, fields types.Fields, s *styles) {
	width := 0
	for _, f := range fields {
		if len(f.Name) > width {
			width = len(f.Name)
		}
	}
	for _, f := range fields {
		pad := strings.Repeat(" ", width-len(f.Name))
		fmt.Fprintf(out, "%s%s:%s %s\n", indent, s.fieldName.Sprint(f.Name), pad, formatValue(f.Value, s))
	}
}

func formatValue(v any, s *styles) string {
	switch val := v.(type) {
	case nil:
		return s.nullValue.Sprint("null")
	case string:
		return s.value.Sprintf("%q", val)
	default:
		return s.value.Sprint(val)
	}
}

// renderViolations lists violations, showing at most limit (0 = all).
func renderViolations(out io.Writer, violations []types.FieldViolation, limit int, s *styles) {
	if len(violations) == 0 {
		return
	}

	shown := violations
	if limit > 0 && len(shown) > limit {
		fmt.Fprintf(out, "%s\n", s.warning.Sprintf("Showing %d/%d violations:", limit, len(violations)))
		shown = shown[:limit]
	} else {
		fmt.Fprintf(out, "%s\n", s.warning.Sprintf("Violations (%d):", len(violations)))
	}
	for _, v := range shown {
		fmt.Fprintf(out, "  line %d: %s %s\n", v.LineNumber, s.fieldName.Sprint(v.FieldName), v.Reason)
	}
}

// formatStats renders a one-line record count summary.
func formatStats(st types.Stats) string {
	return fmt.Sprintf("%d lines, %d headers, %d line items, %d details, %d installments, %d violations",
		st.Lines, st.Headers, st.LineItems, st.Details, st.Installments, st.Violations)
}
