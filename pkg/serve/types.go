package serve

import (
	"encoding/json"

	"github.com/praetorian-inc/posjson/pkg/engine"
	"github.com/praetorian-inc/posjson/pkg/types"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "parse" | "parse_batch" | "layouts" | "close"
	Payload json.RawMessage `json:"payload"`
}

// ParsePayload is the payload for "parse" requests. Feeds arrive either as
// text or, when the client holds raw bytes in the export's own charset, as
// base64 plus an encoding label.
type ParsePayload struct {
	Content       string `json:"content"`
	ContentBase64 string `json:"contentBase64,omitempty"`
	Encoding      string `json:"encoding,omitempty"` // charset of ContentBase64, default latin1
	Source        string `json:"source"`
	ResultOnly    bool   `json:"resultOnly,omitempty"` // reply with the record tree only
}

// ParseBatchPayload is the payload for "parse_batch" requests
type ParseBatchPayload struct {
	Items []engine.ContentItem `json:"items"`
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"` // "ready" | "parse" | "parse_batch" | "layouts" | "decode" | "unknown"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version        string   `json:"version"`
	Discriminators []string `json:"discriminators"`
}

// LayoutsData is the data field for "layouts" responses
type LayoutsData struct {
	Layouts []*types.Layout `json:"layouts"`
}
