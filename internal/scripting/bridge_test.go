package scripting

import (
	"reflect"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestBridgeToGoValue(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	tests := []struct {
		name     string
		input    lua.LValue
		expected any
	}{
		{"nil", lua.LNil, nil},
		{"true", lua.LTrue, true},
		{"false", lua.LFalse, false},
		{"integer", lua.LNumber(42), int64(42)},
		{"float", lua.LNumber(3.5), 3.5},
		{"string", lua.LString("hello"), "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := bridge.ToGoValue(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("ToGoValue(%v) = %v (%T), want %v (%T)",
					tt.input, result, result, tt.expected, tt.expected)
			}
		})
	}
}

func TestBridgeToGoValueArray(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	tbl := L.NewTable()
	tbl.Append(lua.LNumber(1))
	tbl.Append(lua.LString("two"))
	tbl.Append(lua.LTrue)

	got := bridge.ToGoValue(tbl)
	want := []any{int64(1), "two", true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToGoValue(array) = %#v, want %#v", got, want)
	}
}

func TestBridgeToGoValueMap(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	tbl := L.NewTable()
	tbl.RawSetString("name", lua.LString("sween"))
	tbl.RawSetString("count", lua.LNumber(3))

	got := bridge.ToGoValue(tbl)
	want := map[string]any{"name": "sween", "count": int64(3)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToGoValue(map) = %#v, want %#v", got, want)
	}
}

func TestBridgeToGoValueCycle(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	tbl := L.NewTable()
	tbl.RawSetString("self", tbl)

	got := bridge.ToGoValue(tbl)
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("ToGoValue(cyclic) = %T, want map", got)
	}
	if m["self"] != nil {
		t.Errorf("cycle not broken: self = %#v", m["self"])
	}
}

func TestBridgeToLuaValue(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	tests := []struct {
		name     string
		input    any
		expected lua.LValue
	}{
		{"nil", nil, lua.LNil},
		{"bool", true, lua.LTrue},
		{"int", 42, lua.LNumber(42)},
		{"uint32", uint32(7), lua.LNumber(7)},
		{"float64", 3.5, lua.LNumber(3.5)},
		{"string", "hello", lua.LString("hello")},
		{"bytes", []byte("raw"), lua.LString("raw")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := bridge.ToLuaValue(tt.input)
			if result != tt.expected {
				t.Errorf("ToLuaValue(%v) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestBridgeToLuaValueSlice(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	result := bridge.ToLuaValue([]any{"a", int64(2)})
	tbl, ok := result.(*lua.LTable)
	if !ok {
		t.Fatalf("ToLuaValue(slice) = %T, want table", result)
	}
	if tbl.Len() != 2 {
		t.Errorf("table length = %d, want 2", tbl.Len())
	}
	if got := tbl.RawGetInt(1); got != lua.LString("a") {
		t.Errorf("t[1] = %v, want %q", got, "a")
	}
	if got := tbl.RawGetInt(2); got != lua.LNumber(2) {
		t.Errorf("t[2] = %v, want 2", got)
	}
}

func TestBridgeToLuaValueRoundTripMap(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	in := map[string]any{"x": int64(1), "nested": map[string]any{"y": "z"}}
	out := bridge.ToGoValue(bridge.ToLuaValue(in))
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip = %#v, want %#v", out, in)
	}
}

func TestBridgeCallFunc(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	if err := L.DoString(`function concat(a, b) return a .. b, #a end`); err != nil {
		t.Fatal(err)
	}

	results, err := bridge.CallFunc(L.GetGlobal("concat"), "foo", "bar")
	if err != nil {
		t.Fatalf("CallFunc() error = %v", err)
	}
	want := []any{"foobar", int64(3)}
	if !reflect.DeepEqual(results, want) {
		t.Errorf("CallFunc() = %#v, want %#v", results, want)
	}
}

func TestBridgeCallFuncError(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	if err := L.DoString(`function boom() error("no") end`); err != nil {
		t.Fatal(err)
	}
	if _, err := bridge.CallFunc(L.GetGlobal("boom")); err == nil {
		t.Error("CallFunc() on erroring function returned nil error")
	}
}
