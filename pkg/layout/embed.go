package layout

import "embed"

// builtinLayoutsFS embeds the Datasul invoice integration layouts
// (record types 1, 2, 4 and 8).
//
//go:embed layouts/*.yml
var builtinLayoutsFS embed.FS
