package events

import (
	"github.com/SatinCake/skymp/internal/hook"
)

// Hook names and the context property names their handlers see. These are
// part of the plugin-facing contract and never change per instance.
const (
	HookSendAnimationEvent = "sendAnimationEvent"
	HookSendPapyrusEvent   = "sendPapyrusEvent"

	animEventNameVar      = "animEventName"
	animationSucceededVar = "animationSucceeded"
	papyrusEventNameVar   = "papyrusEventName"
)

// API owns the platform's hooks and callback registries.
type API struct {
	sched hook.Scheduler

	sendAnimationEvent *hook.Hook
	sendPapyrusEvent   *hook.Hook

	callbacks     map[string][]*subscription
	callbacksOnce map[string][]*subscription
}

// NewAPI creates an event surface bound to the given script scheduler.
// The two hooks live as long as the API; workers may hold references to
// them across Clear.
func NewAPI(sched hook.Scheduler) *API {
	return &API{
		sched: sched,
		sendAnimationEvent: hook.New(HookSendAnimationEvent, animEventNameVar, sched,
			hook.WithSucceededVar(animationSucceededVar)),
		sendPapyrusEvent: hook.New(HookSendPapyrusEvent, papyrusEventNameVar, sched,
			hook.NonBlocking()),
		callbacks:     make(map[string][]*subscription),
		callbacksOnce: make(map[string][]*subscription),
	}
}

// Clear discards all registered handlers and callbacks, restoring both
// hooks to their initial empty state in place. The hook instances are
// never replaced, so workers firing Enter/Leave concurrently with a
// reload keep hitting live hooks. Used across plugin reloads.
// Script goroutine only.
func (a *API) Clear() {
	a.sendAnimationEvent.Reset()
	a.sendPapyrusEvent.Reset()
	a.callbacks = make(map[string][]*subscription)
	a.callbacksOnce = make(map[string][]*subscription)
}

// Hooks returns the well-known hooks in a stable order.
func (a *API) Hooks() []*hook.Hook {
	return []*hook.Hook{a.sendAnimationEvent, a.sendPapyrusEvent}
}

// SendAnimationEventEnter intercepts an animation-event call. It blocks
// until all matching handlers ran and returns the event name as rewritten
// by them. Safe from any worker goroutine.
func (a *API) SendAnimationEventEnter(owner hook.Owner, selfID uint32, animEventName string) string {
	return a.sendAnimationEvent.Enter(owner, selfID, animEventName)
}

// SendAnimationEventLeave completes the owner's animation-event cycle.
func (a *API) SendAnimationEventLeave(owner hook.Owner, succeeded bool) {
	a.sendAnimationEvent.Leave(owner, succeeded)
}

// SendPapyrusEventEnter intercepts a scripted-event send without blocking
// the caller. The returned control is immediate; handler work is deferred.
func (a *API) SendPapyrusEventEnter(owner hook.Owner, selfID uint32, papyrusEventName string) {
	a.sendPapyrusEvent.Enter(owner, selfID, papyrusEventName)
}

// SendPapyrusEventLeave exists for call symmetry with the host's
// interception points; the papyrus hook delivers everything on Enter.
func (a *API) SendPapyrusEventLeave(owner hook.Owner) {
	a.sendPapyrusEvent.Leave(owner, true)
}
