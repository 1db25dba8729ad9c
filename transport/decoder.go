package transport

import (
	"encoding/json"
	"fmt"

	"github.com/aiproxy/sseproxy/core"
)

// ChunkDecoder decodes a raw upstream SSE payload string into a
// core.UpstreamChunk. Missing JSON keys decode to their Go zero value,
// matching the "missing keys default to empty/absent" contract the core's
// phase dispatcher expects.
type ChunkDecoder struct{}

// Decode parses payload as a core.UpstreamChunk.
func (ChunkDecoder) Decode(payload string) (core.UpstreamChunk, error) {
	var chunk core.UpstreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return core.UpstreamChunk{}, fmt.Errorf("transport: decode upstream chunk: %w", err)
	}
	return chunk, nil
}
