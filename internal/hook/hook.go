package hook

import (
	"fmt"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// Hook is a named interception point with an ordered set of handlers and
// a per-owner enter/leave protocol.
//
// Enter and Leave are safe to call from any worker goroutine. Everything
// else — handler registration, the handler lists, the in-progress set and
// all per-owner slots — belongs to the script goroutine.
type Hook struct {
	name         string
	eventNameVar string
	succeededVar string // "" when the hook reports no success flag
	blocking     bool

	sched Scheduler

	// handlers is append-only; registration replaces the slice through the
	// atomic pointer so the non-blocking fast path can snapshot it without
	// locks.
	handlers atomic.Pointer[[]*Handler]

	// inProgress guards against double Enter per owner. Not a queue: it
	// only detects protocol violations. Script goroutine only.
	inProgress map[Owner]struct{}
}

// Option configures a Hook.
type Option func(*Hook)

// WithSucceededVar sets the context property name under which Leave
// exposes the host's success flag.
func WithSucceededVar(name string) Option {
	return func(h *Hook) {
		h.succeededVar = name
	}
}

// NonBlocking makes Enter defer all script work without waiting, and Leave
// a no-op. Used for hooks whose host operation never reports completion
// back to the same call frame.
func NonBlocking() Option {
	return func(h *Hook) {
		h.blocking = false
	}
}

// New creates a hook. eventNameVar is the context property under which the
// event name is exposed to handlers.
func New(name, eventNameVar string, sched Scheduler, opts ...Option) *Hook {
	h := &Hook{
		name:         name,
		eventNameVar: eventNameVar,
		blocking:     true,
		sched:        sched,
		inProgress:   make(map[Owner]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	empty := make([]*Handler, 0)
	h.handlers.Store(&empty)
	return h
}

// Name returns the hook's identifier.
func (h *Hook) Name() string {
	return h.name
}

// Blocking reports whether Enter/Leave hold their caller.
func (h *Hook) Blocking() bool {
	return h.blocking
}

// AddHandler appends a handler. Registration order is execution order.
// Script goroutine only.
func (h *Hook) AddHandler(hd *Handler) {
	cur := *h.handlers.Load()
	next := make([]*Handler, len(cur)+1)
	copy(next, cur)
	next[len(cur)] = hd
	h.handlers.Store(&next)
}

// HandlerCount returns the number of registered handlers.
func (h *Hook) HandlerCount() int {
	return len(*h.handlers.Load())
}

// Reset discards all handlers (and with them every per-owner slot) and all
// in-flight cycle state, returning the hook to its initial empty state. The
// Hook itself stays valid; workers holding a reference keep using it.
// Script goroutine only.
func (h *Hook) Reset() {
	empty := make([]*Handler, 0)
	h.handlers.Store(&empty)
	clear(h.inProgress)
}

func (h *Hook) snapshot() []*Handler {
	return *h.handlers.Load()
}

// Enter fires the hook's entry half for the given owner. For a blocking
// hook it waits until all matching handlers ran on the script goroutine and
// returns the event name as (possibly) rewritten by them. For a
// non-blocking hook it returns eventName unchanged and immediately; if no
// handler's filter matches, no work crosses the scheduler at all.
//
// Protocol violations and handler failures are never returned to the
// caller; they are relayed as a Fault on the script side.
func (h *Hook) Enter(owner Owner, selfID uint32, eventName string) string {
	if !h.blocking {
		h.enterDeferred(owner, selfID, eventName)
		return eventName
	}

	out := eventName
	err := h.sched.Execute(func(L *lua.LState) error {
		if _, busy := h.inProgress[owner]; busy {
			return fmt.Errorf("%q: %w", h.name, ErrAlreadyProcessing)
		}
		// Recorded before any throwing call so Leave can still clean up.
		h.inProgress[owner] = struct{}{}

		var err error
		out, err = h.handleEnter(L, owner, selfID, out)
		return err
	})
	if err != nil {
		h.sched.Relay(&Fault{Hook: h.name, Phase: PhaseEnter, Err: err})
	}
	return out
}

// enterDeferred is the non-blocking flavor: a cheap inline "does anything
// care" pass on the calling goroutine, then fire-and-forget hand-off. The
// full per-handler matching runs again on the script goroutine.
func (h *Hook) enterDeferred(owner Owner, selfID uint32, eventName string) {
	anyMatch := false
	for _, hd := range h.snapshot() {
		if hd.Matches(selfID, eventName) {
			anyMatch = true
			break
		}
	}
	if !anyMatch {
		return
	}

	name := eventName
	err := h.sched.ExecuteAsync(func(L *lua.LState) error {
		if _, err := h.handleEnter(L, owner, selfID, name); err != nil {
			return &Fault{Hook: h.name, Phase: PhaseEnter, Err: err}
		}
		return nil
	})
	if err != nil {
		h.sched.Relay(&Fault{Hook: h.name, Phase: PhaseEnter, Err: err})
	}
}

// Leave fires the hook's exit half for the given owner. No-op for a
// non-blocking hook: its host operation never reports completion into the
// frame that fired Enter.
func (h *Hook) Leave(owner Owner, succeeded bool) {
	if !h.blocking {
		return
	}

	err := h.sched.Execute(func(L *lua.LState) error {
		if _, ok := h.inProgress[owner]; !ok {
			return fmt.Errorf("%q: %w", h.name, ErrNotProcessing)
		}
		delete(h.inProgress, owner)
		return h.handleLeave(L, owner, succeeded)
	})
	if err != nil {
		h.sched.Relay(&Fault{Hook: h.name, Phase: PhaseLeave, Err: err})
	}
}

// handleEnter runs matching handlers' enter functions in registration
// order, threading the event name through each matching handler's context
// so later handlers observe earlier rewrites. Returns the final name.
// Script goroutine only.
func (h *Hook) handleEnter(L *lua.LState, owner Owner, selfID uint32, eventName string) (string, error) {
	for _, hd := range h.snapshot() {
		st := hd.stateFor(owner)
		st.matches = hd.Matches(selfID, eventName)
		if !st.matches {
			continue
		}

		st.prepare(L)
		st.clearStorage()

		st.context.RawSetString("selfId", lua.LNumber(selfID))
		st.context.RawSetString(h.eventNameVar, lua.LString(eventName))

		if err := callHandler(L, hd.enter, st.context); err != nil {
			return eventName, err
		}

		eventName = lua.LVAsString(st.context.RawGetString(h.eventNameVar))
	}
	return eventName, nil
}

// handleLeave runs the leave functions of handlers whose enter matched,
// in registration order, then erases their per-owner slots. Handlers
// registered after the paired Enter have no slot and are skipped.
// Script goroutine only.
func (h *Hook) handleLeave(L *lua.LState, owner Owner, succeeded bool) error {
	for _, hd := range h.snapshot() {
		st, ok := hd.perOwner[owner]
		if !ok || !st.matches {
			continue
		}

		st.prepare(L)

		if h.succeededVar != "" {
			st.context.RawSetString(h.succeededVar, lua.LBool(succeeded))
		}

		if err := callHandler(L, hd.leave, st.context); err != nil {
			return err
		}

		delete(hd.perOwner, owner)
	}
	return nil
}

// callHandler invokes a handler callable with the context as sole argument.
// A nil callable is a registered-but-absent half of the pair and is skipped.
func callHandler(L *lua.LState, fn lua.LValue, ctx *lua.LTable) error {
	if fn == nil || fn == lua.LNil {
		return nil
	}
	L.Push(fn)
	L.Push(ctx)
	return L.PCall(1, 0, nil)
}
