package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHandleToolCallContent_ArgumentContinuationAcrossChunks(t *testing.T) {
	ctx := context.Background()
	s := NewSession("glm-test", true, "", WithClock(fixedClock(time.Unix(7000, 0))))

	open := `<glm_block id="x">{"data":{"metadata":{"id":"call_1","name":"Write","arguments":"{\"content\":\"part1"}}}</glm_block>`
	frames := s.Consume(ctx, UpstreamChunk{Phase: "tool_call", EditContent: open})
	require.Len(t, frames, 1)
	require.NotNil(t, s.tool)
	require.Equal(t, `{"content":"part1`, s.tool.accumulatedArgs)

	frames = s.Consume(ctx, UpstreamChunk{Phase: "tool_call", EditContent: `part2"}`})
	require.Empty(t, frames, "continuation fragments emit no frames")
	require.Equal(t, `{"content":"part1part2"}`, s.tool.accumulatedArgs)
}

func TestHandleToolCallContent_ContinuationStopsAtResultSentinel(t *testing.T) {
	ctx := context.Background()
	s := NewSession("glm-test", true, "", WithClock(fixedClock(time.Unix(7100, 0))))
	s.tool = &activeTool{id: "call_1", name: "Write", accumulatedArgs: `{"content":"hi`, index: 0}

	s.Consume(ctx, UpstreamChunk{Phase: "tool_call", EditContent: ` there", "result":null}`})
	require.Equal(t, `{"content":"hi there`, s.tool.accumulatedArgs,
		"only text before the result sentinel is appended")
}

func TestHandleToolCallContent_MalformedBlockSkipped(t *testing.T) {
	ctx := context.Background()
	s := NewSession("glm-test", true, "", WithClock(fixedClock(time.Unix(7200, 0))))

	malformed := `<glm_block id="x">{"data":{"metadata":{}}}</glm_block>`
	frames := s.Consume(ctx, UpstreamChunk{Phase: "tool_call", EditContent: malformed})
	require.Empty(t, frames, "malformed metadata starts no tool and emits nothing")
	require.Nil(t, s.tool)
}

func TestHandleToolCallContent_NoActiveToolContinuationIgnored(t *testing.T) {
	ctx := context.Background()
	s := NewSession("glm-test", true, "", WithClock(fixedClock(time.Unix(7300, 0))))

	frames := s.Consume(ctx, UpstreamChunk{Phase: "tool_call", EditContent: "stray fragment, no block open"})
	require.Empty(t, frames)
	require.Nil(t, s.tool)
}
