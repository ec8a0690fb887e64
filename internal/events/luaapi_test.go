package events

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func newRegisteredAPI(t *testing.T) (*API, *inlineScheduler) {
	t.Helper()
	api, sched := newTestAPI(t)
	api.Register(sched.L)
	return api, sched
}

func TestRegisterExposesModule(t *testing.T) {
	_, sched := newRegisteredAPI(t)

	if err := sched.L.DoString(`
		assert(type(sp) == "table", "sp missing")
		assert(type(sp.hooks.sendAnimationEvent.add) == "function")
		assert(type(sp.hooks.sendPapyrusEvent.add) == "function")
		assert(type(sp.on) == "function")
		assert(type(sp.once) == "function")
		assert(type(sp.off) == "function")
		assert(type(sp.sendEvent) == "function")
	`); err != nil {
		t.Fatalf("module surface incomplete: %v", err)
	}
}

func TestLuaHookAdd(t *testing.T) {
	api, sched := newRegisteredAPI(t)

	if err := sched.L.DoString(`
		sp.hooks.sendAnimationEvent.add({
			enter = function(ctx)
				ctx.animEventName = "Ridden_" .. ctx.animEventName
			end,
			leave = function(ctx) end,
		})
	`); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if got := api.Hooks()[0].HandlerCount(); got != 1 {
		t.Fatalf("handler count = %d, want 1", got)
	}

	got := api.SendAnimationEventEnter(1, 0, "Horse")
	if got != "Ridden_Horse" {
		t.Errorf("Enter = %q, want %q", got, "Ridden_Horse")
	}
	api.SendAnimationEventLeave(1, true)
}

func TestLuaHookAddWithFilters(t *testing.T) {
	api, sched := newRegisteredAPI(t)

	if err := sched.L.DoString(`
		hits = {}
		sp.hooks.sendAnimationEvent.add({
			enter = function(ctx) table.insert(hits, ctx.animEventName) end,
		}, 0x10, 0x20, "Jump*")
	`); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	api.SendAnimationEventEnter(1, 0x14, "JumpStart") // matches
	api.SendAnimationEventLeave(1, true)
	api.SendAnimationEventEnter(1, 0x14, "FallStart") // wrong name
	api.SendAnimationEventLeave(1, true)
	api.SendAnimationEventEnter(1, 0x30, "JumpStart") // selfId out of range
	api.SendAnimationEventLeave(1, true)

	if err := sched.L.DoString(`hitsStr = table.concat(hits, ",")`); err != nil {
		t.Fatal(err)
	}
	if got := lua.LVAsString(sched.L.GetGlobal("hitsStr")); got != "JumpStart" {
		t.Errorf("filtered handler saw %q, want %q", got, "JumpStart")
	}
	if len(sched.relayed) != 0 {
		t.Errorf("unexpected faults: %v", sched.relayed)
	}
}

func TestLuaHookAddRejectsEmptyHandler(t *testing.T) {
	_, sched := newRegisteredAPI(t)

	err := sched.L.DoString(`sp.hooks.sendAnimationEvent.add({})`)
	if err == nil {
		t.Fatal("add with no functions did not error")
	}
}

func TestLuaHookAddRejectsNonFunctionHalf(t *testing.T) {
	_, sched := newRegisteredAPI(t)

	err := sched.L.DoString(`
		sp.hooks.sendAnimationEvent.add({
			enter = function(ctx) end,
			leave = "not a function",
		})
	`)
	if err == nil {
		t.Fatal("add with non-function leave did not error")
	}
}

func TestLuaHookAddRejectsBadPattern(t *testing.T) {
	_, sched := newRegisteredAPI(t)

	err := sched.L.DoString(`
		sp.hooks.sendAnimationEvent.add({
			enter = function(ctx) end,
		}, nil, nil, "a*b")
	`)
	if err == nil {
		t.Fatal("add with interior wildcard did not error")
	}
	if !strings.Contains(err.Error(), "pattern") {
		t.Errorf("error %q does not mention the pattern", err)
	}
}

func TestLuaOnOnceOffSendEvent(t *testing.T) {
	_, sched := newRegisteredAPI(t)
	L := sched.L

	if err := L.DoString(`
		seen = {}
		id = sp.on("tick", function(n) table.insert(seen, "on:" .. n) end)
		sp.once("tick", function(n) table.insert(seen, "once:" .. n) end)

		sp.sendEvent("tick", 1)
		sp.sendEvent("tick", 2)

		removed = sp.off(id)
		sp.sendEvent("tick", 3)

		seenStr = table.concat(seen, ",")
	`); err != nil {
		t.Fatalf("script failed: %v", err)
	}

	want := "on:1,once:1,on:2"
	if got := lua.LVAsString(L.GetGlobal("seenStr")); got != want {
		t.Errorf("dispatch trace %q, want %q", got, want)
	}
	if L.GetGlobal("removed") != lua.LTrue {
		t.Error("sp.off did not report removal")
	}
}

func TestLuaOnUnknownEventName(t *testing.T) {
	_, sched := newRegisteredAPI(t)

	if err := sched.L.DoString(`sp.on("bogus", function() end)`); err == nil {
		t.Fatal("sp.on with unknown event name did not error")
	}
}
