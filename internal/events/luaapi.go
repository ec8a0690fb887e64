package events

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/SatinCake/skymp/internal/hook"
)

// Register installs the `sp` module into the Lua state:
//
//	sp.hooks.sendAnimationEvent.add(handler, minSelfId?, maxSelfId?, pattern?)
//	sp.hooks.sendPapyrusEvent.add(handler, minSelfId?, maxSelfId?, pattern?)
//	sp.on(eventName, fn) -> id
//	sp.once(eventName, fn) -> id
//	sp.off(id) -> bool
//	sp.sendEvent(eventName, ...)
//
// Must run on the script goroutine.
func (a *API) Register(L *lua.LState) {
	hooks := L.NewTable()
	for _, h := range a.Hooks() {
		ht := L.NewTable()
		L.SetField(ht, "add", L.NewFunction(a.luaAdd(h)))
		L.SetField(hooks, h.Name(), ht)
	}

	sp := L.NewTable()
	L.SetField(sp, "hooks", hooks)
	L.SetField(sp, "on", L.NewFunction(a.luaOn))
	L.SetField(sp, "once", L.NewFunction(a.luaOnce))
	L.SetField(sp, "off", L.NewFunction(a.luaOff))
	L.SetField(sp, "sendEvent", L.NewFunction(a.luaSendEvent))
	L.SetGlobal("sp", sp)
}

// luaAdd builds the registration entry point for one hook. The handler
// table carries the enter/leave pair; bounds and pattern are optional.
// Pattern syntax errors surface synchronously to the registering script.
func (a *API) luaAdd(h *hook.Hook) lua.LGFunction {
	return func(L *lua.LState) int {
		handlerTbl := L.CheckTable(1)

		enter := handlerTbl.RawGetString("enter")
		leave := handlerTbl.RawGetString("leave")
		if !callable(enter) && !callable(leave) {
			L.ArgError(1, "handler must define an enter or leave function")
			return 0
		}
		if enter != lua.LNil && !callable(enter) {
			L.ArgError(1, "handler.enter must be a function")
			return 0
		}
		if leave != lua.LNil && !callable(leave) {
			L.ArgError(1, "handler.leave must be a function")
			return 0
		}

		var minSelfID, maxSelfID *float64
		if n, ok := L.Get(2).(lua.LNumber); ok {
			v := float64(n)
			minSelfID = &v
		}
		if n, ok := L.Get(3).(lua.LNumber); ok {
			v := float64(n)
			maxSelfID = &v
		}

		var pattern *hook.Pattern
		if s, ok := L.Get(4).(lua.LString); ok {
			p, err := hook.ParsePattern(string(s))
			if err != nil {
				L.RaiseError("%s", err.Error())
				return 0
			}
			pattern = &p
		}

		h.AddHandler(hook.NewHandler(enter, leave, minSelfID, maxSelfID, pattern))
		return 0
	}
}

func (a *API) luaOn(L *lua.LState) int {
	return a.luaAddCallback(L, a.On)
}

func (a *API) luaOnce(L *lua.LState) int {
	return a.luaAddCallback(L, a.Once)
}

func (a *API) luaAddCallback(L *lua.LState, add func(string, lua.LValue) (string, error)) int {
	eventName := L.CheckString(1)
	fn := L.CheckFunction(2)

	id, err := add(eventName, fn)
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	L.Push(lua.LString(id))
	return 1
}

func (a *API) luaOff(L *lua.LState) int {
	id := L.CheckString(1)
	L.Push(lua.LBool(a.Off(id)))
	return 1
}

func (a *API) luaSendEvent(L *lua.LState) int {
	eventName := L.CheckString(1)

	var args []lua.LValue
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, L.Get(i))
	}

	if err := a.SendEvent(L, eventName, args...); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func callable(v lua.LValue) bool {
	return v != nil && v.Type() == lua.LTFunction
}
