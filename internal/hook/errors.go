package hook

import (
	"errors"
	"fmt"
)

// Hook protocol errors.
var (
	// ErrPatternSyntax is returned for filters with more than one wildcard
	// or a wildcard that is not the first or last character.
	ErrPatternSyntax = errors.New("pattern may contain a single '*' at the beginning or end of the string")

	// ErrAlreadyProcessing is returned when an owner calls Enter while its
	// previous Enter on the same hook has no matching Leave yet.
	ErrAlreadyProcessing = errors.New("hook is already processing")

	// ErrNotProcessing is returned for a Leave with no matching Enter.
	ErrNotProcessing = errors.New("hook is not processing")
)

// Phase names the half of the enter/leave cycle a fault happened in.
type Phase string

// Cycle phases.
const (
	PhaseEnter Phase = "enter"
	PhaseLeave Phase = "leave"
)

// Fault is an error raised while running hook work on the script goroutine.
// It is never returned to the worker that fired the hook; the Scheduler
// relays it so it surfaces as a script-side failure instead of corrupting
// the intercepted host call.
type Fault struct {
	Hook  string
	Phase Phase
	Err   error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%v (while performing %s on %q)", f.Err, f.Phase, f.Hook)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
