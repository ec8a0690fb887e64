package events

import "errors"

// Event surface errors.
var (
	// ErrUnknownEvent is returned when on/once is called with an event name
	// outside the fixed set the host emits.
	ErrUnknownEvent = errors.New("unknown event name")

	// ErrInvalidPayload is returned for malformed JSON event payloads.
	ErrInvalidPayload = errors.New("invalid event payload")
)
