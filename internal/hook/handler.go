package hook

import (
	lua "github.com/yuin/gopher-lua"
)

// Owner is the stable identity of a calling worker. The host assigns one
// per worker goroutine; the core uses it only as a lookup key.
type Owner uint64

// Handler is one registered enter/leave function pair with its filters.
// The callables and filters are immutable and shared; the per-owner slots
// are touched only by the script goroutine.
type Handler struct {
	enter lua.LValue
	leave lua.LValue

	minSelfID *float64
	maxSelfID *float64
	pattern   *Pattern

	perOwner map[Owner]*ownerState
}

// ownerState is the context a handler keeps for one owner's enter/leave
// cycle. Script goroutine only.
type ownerState struct {
	context *lua.LTable
	storage *lua.LTable

	// matches caches the filter decision made at Enter; Leave reuses it
	// instead of re-evaluating against a possibly rewritten event name.
	matches bool
}

// NewHandler binds an enter/leave pair with optional selfId bounds
// (inclusive, open on an unset side) and an optional name pattern.
func NewHandler(enter, leave lua.LValue, minSelfID, maxSelfID *float64, pattern *Pattern) *Handler {
	return &Handler{
		enter:     enter,
		leave:     leave,
		minSelfID: minSelfID,
		maxSelfID: maxSelfID,
		pattern:   pattern,
		perOwner:  make(map[Owner]*ownerState),
	}
}

// Matches reports whether this handler wants the firing. Reads only
// immutable fields, so it is safe from any goroutine.
func (h *Handler) Matches(selfID uint32, eventName string) bool {
	if h.minSelfID != nil && float64(selfID) < *h.minSelfID {
		return false
	}
	if h.maxSelfID != nil && float64(selfID) > *h.maxSelfID {
		return false
	}
	if h.pattern != nil {
		return h.pattern.Matches(eventName)
	}
	return true
}

// stateFor returns the owner's slot, creating an empty one on first use.
// Script goroutine only.
func (h *Handler) stateFor(owner Owner) *ownerState {
	st, ok := h.perOwner[owner]
	if !ok {
		st = &ownerState{}
		h.perOwner[owner] = st
	}
	return st
}

// prepare materializes the context table and attaches the storage table
// under "storage". The storage table is created once per slot and kept
// across cycles so script code can hold a reference to it.
func (st *ownerState) prepare(L *lua.LState) {
	if st.context == nil {
		st.context = L.NewTable()
	}
	if st.storage == nil {
		st.storage = L.NewTable()
		st.context.RawSetString("storage", st.storage)
	}
}

// clearStorage empties the storage table in place, preserving its identity.
func (st *ownerState) clearStorage() {
	if st.storage == nil {
		return
	}
	var keys []lua.LValue
	st.storage.ForEach(func(k, _ lua.LValue) {
		keys = append(keys, k)
	})
	for _, k := range keys {
		st.storage.RawSet(k, lua.LNil)
	}
}
