// Package hook implements the interception bridge between host worker
// goroutines and the script goroutine.
//
// A Hook is a named interception point on one host operation. Workers call
// Enter when the operation starts and Leave when it finishes; all registered
// handler bodies run on the script goroutine, reached through a Scheduler.
// A blocking hook holds its caller in Enter/Leave until the script work
// completed; a non-blocking hook checks inline whether any handler cares and
// otherwise returns without crossing the scheduler at all.
//
// Each handler keeps one state slot per calling owner, so interleaved
// Enter/Leave cycles from different workers never observe each other's
// context. Whether a handler participates in a Leave is decided at the
// paired Enter and cached, because handlers may rewrite the event name
// mid-cycle.
package hook
