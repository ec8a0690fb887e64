package events

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"
)

// knownEvents is the fixed set of notification names the host emits.
// on/once registrations outside this set are arguments errors.
var knownEvents = map[string]bool{
	"tick":               true,
	"update":             true,
	"effectStart":        true,
	"effectFinish":       true,
	"magicEffectApply":   true,
	"equip":              true,
	"unequip":            true,
	"hit":                true,
	"containerChanged":   true,
	"deathStart":         true,
	"deathEnd":           true,
	"loadGame":           true,
	"combatState":        true,
	"reset":              true,
	"scriptInit":         true,
	"trackedStats":       true,
	"uniqueIdChange":     true,
	"switchRaceComplete": true,
	"cellFullyLoaded":    true,
	"grabRelease":        true,
	"lockChanged":        true,
	"moveAttachDetach":   true,
	"objectLoaded":       true,
	"waitStop":           true,
	"activate":           true,
}

// KnownEventNames returns the accepted event names, sorted.
func KnownEventNames() []string {
	names := make([]string, 0, len(knownEvents))
	for name := range knownEvents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// subscription is one registered callback.
type subscription struct {
	id string
	fn lua.LValue
}

// On registers a persistent callback for a known event name and returns
// its subscription id. Script goroutine only.
func (a *API) On(eventName string, fn lua.LValue) (string, error) {
	return a.addCallback(a.callbacks, eventName, fn)
}

// Once registers a callback that runs at most once, on the next SendEvent
// for that name. Script goroutine only.
func (a *API) Once(eventName string, fn lua.LValue) (string, error) {
	return a.addCallback(a.callbacksOnce, eventName, fn)
}

func (a *API) addCallback(dst map[string][]*subscription, eventName string, fn lua.LValue) (string, error) {
	if !knownEvents[eventName] {
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, eventName)
	}
	sub := &subscription{id: uuid.New().String(), fn: fn}
	dst[eventName] = append(dst[eventName], sub)
	return sub.id, nil
}

// Off removes a persistent subscription by id. One-shot callbacks are not
// addressable; they remove themselves. Script goroutine only.
func (a *API) Off(id string) bool {
	for name, subs := range a.callbacks {
		for i, sub := range subs {
			if sub.id == id {
				a.callbacks[name] = append(subs[:i:i], subs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// SendEvent invokes every persistent callback for the event in registration
// order, then a snapshot of the one-shot list taken before any callback
// runs — one-shots registered during dispatch wait for the next firing.
// Stops at the first callback error. Script goroutine only; the caller is
// responsible for already being there.
func (a *API) SendEvent(L *lua.LState, eventName string, args ...lua.LValue) error {
	persistent := a.callbacks[eventName]
	once := a.callbacksOnce[eventName]
	a.callbacksOnce[eventName] = nil

	for _, sub := range persistent {
		if err := callValue(L, sub.fn, args...); err != nil {
			return err
		}
	}
	for _, sub := range once {
		if err := callValue(L, sub.fn, args...); err != nil {
			return err
		}
	}
	return nil
}

// CallbackCount returns persistent + pending one-shot counts for an event.
func (a *API) CallbackCount(eventName string) (persistent, once int) {
	return len(a.callbacks[eventName]), len(a.callbacksOnce[eventName])
}

func callValue(L *lua.LState, fn lua.LValue, args ...lua.LValue) error {
	if fn == nil || fn == lua.LNil {
		return nil
	}
	L.Push(fn)
	for _, arg := range args {
		L.Push(arg)
	}
	return L.PCall(len(args), 0, nil)
}
