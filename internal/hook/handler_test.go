package hook

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func f64(v float64) *float64 {
	return &v
}

func TestHandlerMatchesBounds(t *testing.T) {
	tests := []struct {
		name   string
		min    *float64
		max    *float64
		selfID uint32
		want   bool
	}{
		{name: "no bounds", selfID: 0, want: true},
		{name: "inside both", min: f64(10), max: f64(20), selfID: 15, want: true},
		{name: "at min", min: f64(10), max: f64(20), selfID: 10, want: true},
		{name: "at max", min: f64(10), max: f64(20), selfID: 20, want: true},
		{name: "below min", min: f64(10), max: f64(20), selfID: 9, want: false},
		{name: "above max", min: f64(10), max: f64(20), selfID: 21, want: false},
		{name: "only min set below", min: f64(10), selfID: 9, want: false},
		{name: "only min set above", min: f64(10), selfID: 1 << 30, want: true},
		{name: "only max set above", max: f64(10), selfID: 11, want: false},
		{name: "only max set below", max: f64(10), selfID: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(lua.LNil, lua.LNil, tt.min, tt.max, nil)
			if got := h.Matches(tt.selfID, "evt"); got != tt.want {
				t.Errorf("Matches(%d) = %v, want %v", tt.selfID, got, tt.want)
			}
		})
	}
}

func TestHandlerMatchesPattern(t *testing.T) {
	p, err := ParsePattern("anim*")
	if err != nil {
		t.Fatal(err)
	}

	h := NewHandler(lua.LNil, lua.LNil, nil, nil, &p)
	if !h.Matches(0, "animAttack") {
		t.Error("expected pattern to match animAttack")
	}
	if h.Matches(0, "attack") {
		t.Error("expected pattern not to match attack")
	}

	// Bounds gate runs before the pattern.
	bounded := NewHandler(lua.LNil, lua.LNil, f64(100), nil, &p)
	if bounded.Matches(5, "animAttack") {
		t.Error("expected bounds to reject selfID 5")
	}
}

func TestOwnerStateStorageClearedInPlace(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	st := &ownerState{}
	st.prepare(L)

	storage := st.storage
	storage.RawSetString("k", lua.LString("v"))

	st.prepare(L)
	st.clearStorage()

	if st.storage != storage {
		t.Error("storage identity changed across prepare/clear")
	}
	if st.storage.RawGetString("k") != lua.LNil {
		t.Error("storage key survived clear")
	}
	if st.context.RawGetString("storage") != lua.LValue(storage) {
		t.Error("context no longer references the storage table")
	}
}
