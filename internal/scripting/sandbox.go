package scripting

import (
	lua "github.com/yuin/gopher-lua"
)

// Capability is a permission a plugin manifest can request.
type Capability string

// Available capabilities.
const (
	// CapabilityOS opens the os library (getenv, time, clock).
	CapabilityOS Capability = "os"

	// CapabilityIO opens the io library for trusted plugins.
	CapabilityIO Capability = "io"

	// CapabilityUnsafe opens the full Lua stdlib including debug.
	CapabilityUnsafe Capability = "unsafe"
)

// Sandbox restricts what plugin Lua code can reach.
type Sandbox struct {
	L            *lua.LState
	capabilities map[Capability]bool
}

// NewSandbox creates a sandbox for the Lua state.
func NewSandbox(L *lua.LState) *Sandbox {
	return &Sandbox{
		L:            L,
		capabilities: make(map[Capability]bool),
	}
}

// Install removes globals that could be used to escape the sandbox.
// Loading code from disk is the loader's job, not the plugin's.
func (s *Sandbox) Install() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}

	// Clear module search paths so require cannot reach the filesystem.
	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}
}

// Grant enables a capability and opens the libraries it covers.
func (s *Sandbox) Grant(cap Capability) {
	s.capabilities[cap] = true

	switch cap {
	case CapabilityOS:
		lua.OpenOs(s.L)
	case CapabilityIO:
		lua.OpenIo(s.L)
	case CapabilityUnsafe:
		lua.OpenIo(s.L)
		lua.OpenOs(s.L)
		lua.OpenDebug(s.L)
	}
}

// Has reports whether the capability has been granted.
func (s *Sandbox) Has(cap Capability) bool {
	return s.capabilities[cap]
}

// Capabilities returns all granted capabilities.
func (s *Sandbox) Capabilities() []Capability {
	caps := make([]Capability, 0, len(s.capabilities))
	for cap := range s.capabilities {
		caps = append(caps, cap)
	}
	return caps
}
