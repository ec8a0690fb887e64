package scripting

import "errors"

// Scripting runtime errors.
var (
	// ErrExecutorClosed is returned when attempting to use a closed executor.
	ErrExecutorClosed = errors.New("script executor is closed")

	// ErrQueueFull is returned when the executor queue cannot accept more work.
	ErrQueueFull = errors.New("script executor queue is full")

	// ErrStateClosed is returned when attempting to use a closed Lua state.
	ErrStateClosed = errors.New("lua state is closed")
)
