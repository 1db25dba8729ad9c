package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// decodeFrame strips the "data: " prefix and trailing blank line from an SSE
// frame and unmarshals its JSON payload, for assertions against chunkFrame
// fields.
func decodeFrame(t *testing.T, line string) chunkFrame {
	t.Helper()
	require.True(t, len(line) > 8 && line[:6] == "data: ", "not an SSE data line: %q", line)
	payload := line[6 : len(line)-2]
	var f chunkFrame
	require.NoError(t, json.Unmarshal([]byte(payload), &f))
	return f
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSession_ThinkingThenAnswerThenDone(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	s := NewSession("glm-test", true, "hello", WithClock(fixedClock(now)))

	frames := s.Consume(ctx, UpstreamChunk{Phase: "thinking", DeltaContent: "reasoning…"})
	require.Len(t, frames, 1)
	f := decodeFrame(t, frames[0])
	require.Equal(t, "assistant", f.Choices[0].Delta.Role)
	require.JSONEq(t, `"reasoning…"`, string(f.Choices[0].Delta.Content))

	frames = s.Consume(ctx, UpstreamChunk{Phase: "answer", DeltaContent: "Hello."})
	require.Empty(t, frames, "answer text under threshold should not flush yet")

	frames = s.Consume(ctx, UpstreamChunk{Phase: "done"})
	require.Len(t, frames, 3)

	content := decodeFrame(t, frames[0])
	require.Empty(t, content.Choices[0].Delta.Role, "role already sent once")
	require.JSONEq(t, `"Hello."`, string(content.Choices[0].Delta.Content))

	stop := decodeFrame(t, frames[1])
	require.NotNil(t, stop.Choices[0].FinishReason)
	require.Equal(t, "stop", *stop.Choices[0].FinishReason)

	require.Equal(t, doneLine, frames[2])
}

func TestSession_SimpleWriteTool(t *testing.T) {
	ctx := context.Background()
	s := NewSession("glm-test", true, "create a.html with <h1>Hi</h1>", WithClock(fixedClock(time.Unix(2000, 0))))

	block := `<glm_block id="x">{"data":{"metadata":{"id":"call_1","name":"Write","arguments":"{\"content\":\"<h1>Hi</h1>\"}"}}}</glm_block>`
	frames := s.Consume(ctx, UpstreamChunk{Phase: "tool_call", EditContent: block})
	require.Len(t, frames, 1)
	start := decodeFrame(t, frames[0])
	require.Equal(t, "assistant", start.Choices[0].Delta.Role)
	require.JSONEq(t, "null", string(start.Choices[0].Delta.Content))
	require.Equal(t, "call_1", start.Choices[0].Delta.ToolCalls[0].ID)
	require.Equal(t, "Write", start.Choices[0].Delta.ToolCalls[0].Function.Name)
	require.Equal(t, 0, start.Choices[0].Delta.ToolCalls[0].Index)

	frames = s.Consume(ctx, UpstreamChunk{Phase: "other", EditContent: "null,\"result\":null}"})
	require.Len(t, frames, 3)

	args := decodeFrame(t, frames[0])
	require.Empty(t, args.Choices[0].Delta.ToolCalls[0].ID, "id must not repeat on args frame")
	require.JSONEq(t, `{"content":"<h1>Hi</h1>","file_path":"a.html"}`, args.Choices[0].Delta.ToolCalls[0].Function.Arguments)

	finish := decodeFrame(t, frames[1])
	require.Equal(t, "tool_calls", *finish.Choices[0].FinishReason)

	require.Equal(t, doneLine, frames[2])

	require.Empty(t, s.Consume(ctx, UpstreamChunk{Phase: "answer", DeltaContent: "ignored"}),
		"no frames after stream_ended")
}

func TestSession_TwoSequentialTools(t *testing.T) {
	ctx := context.Background()
	s := NewSession("glm-test", true, "", WithClock(fixedClock(time.Unix(3000, 0))))

	payload := `<glm_block id="a">{"data":{"metadata":{"id":"call_a","name":"A","arguments":"{}"}}}</glm_block>` +
		`<glm_block id="b">{"data":{"metadata":{"id":"call_b","name":"B","arguments":"{}"}}}</glm_block>`

	frames := s.Consume(ctx, UpstreamChunk{Phase: "tool_call", EditContent: payload})
	require.Len(t, frames, 4, "start(A), args(A), finish(A), start(B)")

	startA := decodeFrame(t, frames[0])
	require.Equal(t, "A", startA.Choices[0].Delta.ToolCalls[0].Function.Name)
	require.Equal(t, "call_a", startA.Choices[0].Delta.ToolCalls[0].ID)
	require.Equal(t, 0, startA.Choices[0].Delta.ToolCalls[0].Index)

	argsA := decodeFrame(t, frames[1])
	require.Equal(t, "{}", argsA.Choices[0].Delta.ToolCalls[0].Function.Arguments)

	finishA := decodeFrame(t, frames[2])
	require.Equal(t, "tool_calls", *finishA.Choices[0].FinishReason)

	startB := decodeFrame(t, frames[3])
	require.Equal(t, "B", startB.Choices[0].Delta.ToolCalls[0].Function.Name)
	require.Equal(t, "call_b", startB.Choices[0].Delta.ToolCalls[0].ID)
	require.Equal(t, 1, startB.Choices[0].Delta.ToolCalls[0].Index)
	require.Empty(t, startB.Choices[0].Delta.Role, "role already sent on tool A's start frame")
}

func TestSession_ChunkAfterStreamEnded(t *testing.T) {
	ctx := context.Background()
	s := NewSession("glm-test", true, "", WithClock(fixedClock(time.Unix(4000, 0))))
	s.streamEnded = true

	frames := s.Consume(ctx, UpstreamChunk{Phase: "answer", DeltaContent: "anything"})
	require.Empty(t, frames)
}

func TestSession_UnknownAndMissingPhase(t *testing.T) {
	ctx := context.Background()
	s := NewSession("glm-test", true, "", WithClock(fixedClock(time.Unix(5000, 0))))

	require.Empty(t, s.Consume(ctx, UpstreamChunk{}))
	require.Empty(t, s.Consume(ctx, UpstreamChunk{Phase: "bogus"}))
}

func TestSession_AnswerBufferFlushesOnSize(t *testing.T) {
	ctx := context.Background()
	s := NewSession("glm-test", true, "", WithClock(fixedClock(time.Unix(6000, 0))))

	long := make([]byte, flushCharThreshold)
	for i := range long {
		long[i] = 'x'
	}
	frames := s.Consume(ctx, UpstreamChunk{Phase: "answer", DeltaContent: string(long)})
	require.Len(t, frames, 1)
}
