package core

import "errors"

// Sentinel errors naming the malformed-input conditions the core recognizes.
// Session.Consume never returns an error: a malformed chunk is logged and
// dropped, or degrades the current tool call, and the session continues.
// Only ErrMalformedBlock is returned by an internal function; the
// stream-ended, missing-phase and unknown-phase conditions are handled
// inline in Consume without producing an error value.
var (
	// ErrStreamEnded names a chunk arriving after the session has already
	// emitted its terminator.
	ErrStreamEnded = errors.New("core: stream already ended")

	// ErrMissingPhase names a chunk with no phase field.
	ErrMissingPhase = errors.New("core: chunk missing phase")

	// ErrUnknownPhase names a chunk whose phase is not one of the recognized
	// values.
	ErrUnknownPhase = errors.New("core: unknown phase")

	// ErrMalformedBlock is returned by parseGlmBlockMetadata when a
	// <glm_block> payload decodes but carries no tool name. A payload that is
	// not valid JSON yields the JSON decoding error instead.
	ErrMalformedBlock = errors.New("core: malformed glm_block metadata")
)
