package core

import (
	"context"
	"strings"
	"time"

	"github.com/aiproxy/sseproxy/providers/observability"
)

// Session is per-request translation state: created on the first upstream
// chunk, destroyed (or reset for reuse) after [DONE] is emitted. It is not
// safe for concurrent use; one session belongs to exactly one dispatching
// goroutine.
type Session struct {
	modelID     string
	streamMode  bool
	userMessage string

	currentPhase Phase
	streamEnded  bool
	roleEmitted  bool

	tool          *activeTool
	nextToolIndex int
	usage         map[string]int64

	buffer  answerBuffer
	builder frameBuilder

	logger observability.Logger
	clock  func() time.Time
}

// Option configures a Session at construction.
type Option func(*Session)

// WithLogger injects a structured logger. Defaults to a no-op logger.
func WithLogger(logger observability.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithClock overrides the time source, for deterministic tests of the
// coalescing buffer's time trigger.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) { s.clock = clock }
}

// NewSession constructs a Session for one downstream response. modelID is
// echoed in every emitted frame; userMessage is the last user text, used
// only for filename inference during tool-argument repair.
func NewSession(modelID string, streamMode bool, userMessage string, opts ...Option) *Session {
	s := &Session{
		modelID:     modelID,
		streamMode:  streamMode,
		userMessage: userMessage,
		logger:      noopLogger{},
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.buffer = newAnswerBuffer(s.clock())
	s.builder = newFrameBuilder(s.modelID, s.clock().Unix())
	return s
}

// Consume processes one parsed upstream chunk and returns zero or more
// downstream SSE frame strings, each already terminated by a blank line.
// It never returns an error: malformed input is logged and the chunk is
// dropped or degrades the current tool call, per the swallow-log-at-boundary
// contract — the session always continues.
func (s *Session) Consume(ctx context.Context, chunk UpstreamChunk) []string {
	if s.streamEnded {
		return nil
	}

	if chunk.Phase == "" {
		s.logWarn(ctx, "chunk missing phase")
		return nil
	}

	phase := Phase(chunk.Phase)
	switch phase {
	case PhaseThinking, PhaseToolCall, PhaseOther, PhaseAnswer, PhaseDone:
	default:
		s.logWarn(ctx, "unknown phase", observability.String("phase", chunk.Phase))
		return nil
	}

	var frames []string
	if phase != s.currentPhase {
		frames = append(frames, s.flushAnswerBuffer(ctx)...)
		s.currentPhase = phase
	}

	switch phase {
	case PhaseThinking:
		frames = append(frames, s.handleThinking(ctx, chunk.DeltaContent)...)
	case PhaseToolCall:
		frames = append(frames, s.handleToolCallContent(ctx, chunk.EditContent)...)
	case PhaseOther:
		frames = append(frames, s.handleOther(ctx, chunk)...)
	case PhaseAnswer:
		frames = append(frames, s.handleAnswer(ctx, chunk.DeltaContent)...)
	case PhaseDone:
		frames = append(frames, s.handleDone(ctx, chunk)...)
	}
	return frames
}

func (s *Session) handleThinking(ctx context.Context, text string) []string {
	if text == "" {
		return nil
	}
	var frames []string
	s.emitContent(ctx, &frames, text)
	return frames
}

func (s *Session) handleAnswer(ctx context.Context, text string) []string {
	if text == "" {
		return nil
	}
	var frames []string
	if s.buffer.append(text, s.clock()) {
		if flushed, ok := s.buffer.flush(s.clock()); ok {
			s.emitContent(ctx, &frames, flushed)
		}
	}
	return frames
}

func (s *Session) flushAnswerBuffer(ctx context.Context) []string {
	var frames []string
	if flushed, ok := s.buffer.flush(s.clock()); ok {
		s.emitContent(ctx, &frames, flushed)
	}
	return frames
}

// handleOther processes an other-phase chunk: it stores any usage counters
// and, when a tool is active and the tool-end sentinel is present, finalizes
// the tool and closes the stream. See §4.3 for the sentinel's rationale.
func (s *Session) handleOther(ctx context.Context, chunk UpstreamChunk) []string {
	if chunk.Usage != nil {
		s.usage = chunk.Usage
	}

	var frames []string
	if s.tool != nil && strings.HasPrefix(chunk.EditContent, "null,") {
		frames = append(frames, s.finalizeActiveTool(ctx)...)
		frames = append(frames, doneLine)
		s.streamEnded = true
	}
	return frames
}

func (s *Session) handleDone(ctx context.Context, chunk UpstreamChunk) []string {
	var frames []string

	if flushed, ok := s.buffer.flush(s.clock()); ok {
		s.emitContent(ctx, &frames, flushed)
	}
	if s.tool != nil {
		frames = append(frames, s.finalizeActiveTool(ctx)...)
	}

	usage := s.usage
	if chunk.Usage != nil {
		usage = chunk.Usage
	}
	s.emit(ctx, &frames, s.builder.stopFinish(usage))
	frames = append(frames, doneLine)

	s.reset()
	return frames
}

// reset restores the session to its pristine state so the object may be
// reused for a subsequent request, per §4.7 step 5.
func (s *Session) reset() {
	s.streamEnded = false
	s.roleEmitted = false
	s.tool = nil
	s.nextToolIndex = 0
	s.usage = nil
	s.currentPhase = ""
	s.buffer = newAnswerBuffer(s.clock())
	s.builder = newFrameBuilder(s.modelID, s.clock().Unix())
}

// emitContent builds and appends a content frame, setting role_emitted once
// the frame carrying role:"assistant" has actually been appended.
func (s *Session) emitContent(ctx context.Context, frames *[]string, text string) {
	withRole := !s.roleEmitted
	if s.emit(ctx, frames, s.builder.content(text, withRole)) && withRole {
		s.roleEmitted = true
	}
}

// emit marshals f and appends it to frames, logging and dropping the frame
// on a marshal failure rather than aborting the session.
func (s *Session) emit(ctx context.Context, frames *[]string, f chunkFrame) bool {
	line, err := marshalFrame(f)
	if err != nil {
		s.logError(ctx, "failed to marshal frame", observability.Error(err))
		return false
	}
	*frames = append(*frames, line)
	return true
}

func (s *Session) logWarn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	s.logger.Warn(ctx, msg, attrs...)
}

func (s *Session) logError(ctx context.Context, msg string, attrs ...observability.Attribute) {
	s.logger.Error(ctx, msg, attrs...)
}

// noopLogger is the default logger when none is injected via WithLogger.
type noopLogger struct{}

func (noopLogger) Trace(context.Context, string, ...observability.Attribute) {}
func (noopLogger) Debug(context.Context, string, ...observability.Attribute) {}
func (noopLogger) Info(context.Context, string, ...observability.Attribute)  {}
func (noopLogger) Warn(context.Context, string, ...observability.Attribute)  {}
func (noopLogger) Error(context.Context, string, ...observability.Attribute) {}
