// Package export writes parse results for people and other tools.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/praetorian-inc/posjson/pkg/types"
)

// Mode selects how much of a result the JSON export carries.
type Mode string

const (
	// ModeResult writes only the record tree, the "Download JSON" view.
	ModeResult Mode = "result"
	// ModeFull writes the record tree, raw lines, and violations.
	ModeFull Mode = "full"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeResult, ModeFull:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown export mode %q (expected result or full)", s)
}

// WriteJSON writes res as indented JSON.
func WriteJSON(w io.Writer, res *types.ParseResult, mode Mode) error {
	var v any = res
	if mode == ModeResult {
		v = res.Result
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
