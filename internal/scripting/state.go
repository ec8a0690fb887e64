package scripting

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// State wraps gopher-lua with a restricted standard library for plugin code.
//
// The LState itself is not goroutine-safe. Outside of plugin load (which the
// manager performs on the script goroutine), all access goes through the
// Executor; the mutex here only guards lifecycle operations racing Close.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	sandbox *Sandbox
	closed  bool
}

// NewState creates a new sandboxed Lua state.
func NewState() (*State, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})

	// Open only libraries that cannot touch the host system.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	s := &State{L: L, sandbox: NewSandbox(L)}
	s.sandbox.Install()
	return s, nil
}

// DoFile executes a Lua file synchronously.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	return s.recovered(func() error { return s.L.DoFile(path) })
}

// DoString executes Lua source synchronously.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	return s.recovered(func() error { return s.L.DoString(code) })
}

// recovered runs fn, converting Lua panics into errors.
func (s *State) recovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Call invokes a global Lua function with the given arguments.
// Returns an empty slice (not nil) if the function returns no values.
func (s *State) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fnVal := s.L.GetGlobal(fn)
	if fnVal == lua.LNil {
		return nil, fmt.Errorf("function %q not found", fn)
	}
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%q is not a function (got %s)", fn, fnVal.Type())
	}

	stackTop := s.L.GetTop()
	s.L.Push(fnVal)
	for _, arg := range args {
		s.L.Push(arg)
	}

	callErr := s.recovered(func() error {
		return s.L.PCall(len(args), lua.MultRet, nil)
	})
	if callErr != nil {
		return nil, callErr
	}

	nRet := s.L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := 0; i < nRet; i++ {
		results[i] = s.L.Get(stackTop + i + 1)
	}
	s.L.Pop(nRet)
	return results, nil
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.SetGlobal(name, value)
}

// RegisterModule registers a module table with the given functions.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	mod := s.L.SetFuncs(s.L.NewTable(), funcs)
	s.L.SetGlobal(name, mod)
}

// Sandbox returns the sandbox for capability management.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// LuaState returns the underlying gopher-lua state.
//
// Direct access bypasses the closed check; callers must be on the script
// goroutine.
func (s *State) LuaState() *lua.LState {
	return s.L
}

// builtinGlobals are kept across ResetGlobals.
var builtinGlobals = map[string]bool{
	"_G": true, "_VERSION": true,
	"assert": true, "error": true, "getmetatable": true,
	"ipairs": true, "next": true, "pairs": true, "pcall": true,
	"print": true, "rawequal": true, "rawget": true, "rawlen": true,
	"rawset": true, "select": true, "setmetatable": true,
	"tonumber": true, "tostring": true, "type": true, "xpcall": true,
	"coroutine": true, "math": true, "string": true, "table": true,
	"package": true, "require": true,
}

// ResetGlobals removes all user-defined globals while preserving built-in
// libraries. Used across plugin reloads instead of rebuilding the state.
func (s *State) ResetGlobals() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	globals := s.L.Get(lua.GlobalsIndex).(*lua.LTable)
	var remove []string
	globals.ForEach(func(k, _ lua.LValue) {
		if ks, ok := k.(lua.LString); ok && !builtinGlobals[string(ks)] {
			remove = append(remove, string(ks))
		}
	})
	for _, name := range remove {
		s.L.SetGlobal(name, lua.LNil)
	}
	return nil
}

// IsClosed reports whether the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. Further calls return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
