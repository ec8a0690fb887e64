// Package scripting owns the embedded Lua runtime.
//
// gopher-lua's LState is not goroutine-safe, so the whole scripting side of
// the platform runs on exactly one goroutine. The Executor is the only door
// into that goroutine: worker goroutines submit closures either synchronously
// (Execute) or fire-and-forget (ExecuteAsync), and faults that must surface
// on the script goroutine rather than at the submitter travel through Relay.
//
// State wraps the LState with a restricted standard library, and Bridge
// converts values between Go and Lua representations.
package scripting
