package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

// flushCharThreshold is the buffer_chars size trigger from §4.6.
const flushCharThreshold = 100

// flushInterval is the wall-clock time trigger from §4.6.
const flushInterval = 50 * time.Millisecond

// answerBuffer coalesces answer-phase text so the client receives fewer,
// larger content frames instead of one frame per upstream delta.
type answerBuffer struct {
	text        strings.Builder
	chars       int
	lastFlushAt time.Time
}

func newAnswerBuffer(now time.Time) answerBuffer {
	return answerBuffer{lastFlushAt: now}
}

// append adds text to the buffer and reports whether a flush should happen
// now, per the size/time/punctuation triggers.
func (b *answerBuffer) append(text string, now time.Time) bool {
	b.text.WriteString(text)
	b.chars += utf8.RuneCountInString(text)

	if b.chars >= flushCharThreshold {
		return true
	}
	if now.Sub(b.lastFlushAt) >= flushInterval {
		return true
	}
	if strings.ContainsAny(text, "\n") {
		return true
	}
	if strings.ContainsAny(text, "。！？") {
		return true
	}
	return false
}

// flush returns the buffered text and clears the buffer. Returns "", false
// if there is nothing to flush.
func (b *answerBuffer) flush(now time.Time) (string, bool) {
	if b.chars == 0 {
		return "", false
	}
	text := b.text.String()
	b.text.Reset()
	b.chars = 0
	b.lastFlushAt = now
	return text, true
}
