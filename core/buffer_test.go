package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAnswerBuffer_FlushesOnCharThreshold(t *testing.T) {
	now := time.Unix(1, 0)
	b := newAnswerBuffer(now)

	long := make([]byte, flushCharThreshold)
	for i := range long {
		long[i] = 'a'
	}
	require.True(t, b.append(string(long), now))
}

func TestAnswerBuffer_FlushesOnTimeElapsed(t *testing.T) {
	start := time.Unix(1, 0)
	b := newAnswerBuffer(start)

	require.True(t, b.append("x", start.Add(flushInterval+time.Millisecond)))
}

func TestAnswerBuffer_FlushesOnNewline(t *testing.T) {
	now := time.Unix(1, 0)
	b := newAnswerBuffer(now)
	require.True(t, b.append("partial\n", now))
}

func TestAnswerBuffer_FlushesOnSentencePunctuation(t *testing.T) {
	now := time.Unix(1, 0)
	b := newAnswerBuffer(now)
	require.True(t, b.append("你好。", now))
}

func TestAnswerBuffer_NoFlushBelowAllThresholds(t *testing.T) {
	now := time.Unix(1, 0)
	b := newAnswerBuffer(now)
	require.False(t, b.append("hi", now))
}

func TestAnswerBuffer_FlushReturnsAndClears(t *testing.T) {
	now := time.Unix(1, 0)
	b := newAnswerBuffer(now)
	b.append("hello", now)

	text, ok := b.flush(now)
	require.True(t, ok)
	require.Equal(t, "hello", text)

	_, ok = b.flush(now)
	require.False(t, ok, "flushing an empty buffer reports nothing to flush")
}
