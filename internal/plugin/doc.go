// Package plugin loads Lua plugins into the platform's shared scripting
// runtime.
//
// All plugins share one Lua state and register against the same events
// surface, matching how the game host exposes a single scripting engine.
// The Manager owns the lifecycle: discovery, load, and the reload path
// that clears every hook and callback registration before re-running
// plugin entry files.
package plugin
