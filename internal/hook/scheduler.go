package hook

import (
	lua "github.com/yuin/gopher-lua"
)

// Scheduler is the door to the script goroutine. Implemented by
// scripting.Executor; declared here so the core depends only on what it
// needs from the cross-goroutine queue.
type Scheduler interface {
	// Execute runs fn on the script goroutine and blocks until it returns.
	Execute(fn func(L *lua.LState) error) error

	// ExecuteAsync queues fn without waiting. Errors returned by fn are
	// relayed, not delivered to the submitter.
	ExecuteAsync(fn func(L *lua.LState) error) error

	// Relay forwards an error to surface on the script side.
	Relay(err error)
}
