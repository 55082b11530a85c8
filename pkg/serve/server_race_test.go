package serve

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServer_ParseBatch_RaceCondition tests that parse_batch responses are sent
// even when EOF arrives before the main loop processes the pending request.
func TestServer_ParseBatch_RaceCondition(t *testing.T) {
	core := newTestCore(t)

	// Run the test multiple times to trigger the race condition
	for i := range 10 {
		request := `{"type":"parse_batch","payload":{"items":[{"source":"s1","content":"1000001"},{"source":"s2","content":"2orphan"}]}}` + "\n"
		in := strings.NewReader(request)
		out := &strings.Builder{}

		srv := NewServer(core, in, out)
		err := srv.Run(context.Background())
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2, "iteration %d: expected 2 lines (ready + parse_batch response), got %d", i, len(lines))

		var resp Response
		err = json.Unmarshal([]byte(lines[1]), &resp)
		require.NoError(t, err, "iteration %d: failed to unmarshal response", i)

		assert.True(t, resp.Success, "iteration %d: expected success", i)
		assert.Equal(t, "parse_batch", resp.Type, "iteration %d: expected parse_batch type", i)
	}
}
