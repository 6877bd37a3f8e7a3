package callback

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/gridpointai/nd-runtime/errors"
)

// LuaCallable is a host-level callable implemented as a Lua function.
// Windows and coordinates are marshaled as Lua tables; extra positional
// arguments follow the native data and extra keywords arrive as a
// trailing table.
//
// gopher-lua states are not goroutine-safe; invocations here run on the
// goroutine of the owning call, which the operation layer guarantees.
type LuaCallable struct {
	L        *lua.LState
	Fn       *lua.LFunction
	ownState bool
}

// NewLuaCallable wraps a function living in a caller-owned Lua state.
// The caller keeps responsibility for closing the state.
func NewLuaCallable(L *lua.LState, fn *lua.LFunction) *LuaCallable {
	return &LuaCallable{L: L, Fn: fn}
}

// LoadLuaCallable compiles a script in a fresh Lua state and resolves
// the named global function. The returned callable owns the state;
// Release (via the prepared Callback) closes it.
func LoadLuaCallable(script, fnName string) (*LuaCallable, error) {
	L := lua.NewState()
	if err := L.DoString(script); err != nil {
		L.Close()
		return nil, errors.Callback("lua script failed to load", err)
	}
	fn, ok := L.GetGlobal(fnName).(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, errors.New(errors.PhaseCallback, errors.KindCallback).
			Detail("lua global %q is not a function", fnName).
			Build()
	}
	return &LuaCallable{L: L, Fn: fn, ownState: true}, nil
}

// LoadLuaFile is LoadLuaCallable for a script on disk.
func LoadLuaFile(path, fnName string) (*LuaCallable, error) {
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, errors.Callback("lua script failed to load", err)
	}
	fn, ok := L.GetGlobal(fnName).(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, errors.New(errors.PhaseCallback, errors.KindCallback).
			Detail("lua global %q is not a function", fnName).
			Build()
	}
	return &LuaCallable{L: L, Fn: fn, ownState: true}, nil
}

func (lc *LuaCallable) call(nret int, args ...lua.LValue) ([]lua.LValue, error) {
	L := lc.L
	top := L.GetTop()
	if err := L.CallByParam(lua.P{Fn: lc.Fn, NRet: nret, Protect: true}, args...); err != nil {
		L.SetTop(top)
		return nil, errors.Callback("lua callable failed", err)
	}
	rets := make([]lua.LValue, nret)
	for i := 0; i < nret; i++ {
		rets[i] = L.Get(top + 1 + i)
	}
	L.SetTop(top)
	return rets, nil
}

func (lc *LuaCallable) buildArgs(first lua.LValue, rest []lua.LValue, extra []any, kw map[string]any) []lua.LValue {
	args := make([]lua.LValue, 0, 2+len(rest)+len(extra))
	args = append(args, first)
	args = append(args, rest...)
	for _, e := range extra {
		args = append(args, toLua(lc.L, e))
	}
	if len(kw) > 0 {
		t := lc.L.NewTable()
		for k, v := range kw {
			t.RawSetString(k, toLua(lc.L, v))
		}
		args = append(args, t)
	}
	return args
}

func (lc *LuaCallable) invokeLine(in, out []float64, extra []any, kw map[string]any) error {
	inT := floatsToTable(lc.L, in)
	rets, err := lc.call(1, lc.buildArgs(inT, []lua.LValue{lua.LNumber(len(out))}, extra, kw)...)
	if err != nil {
		return err
	}
	outT, ok := rets[0].(*lua.LTable)
	if !ok {
		return errors.New(errors.PhaseCallback, errors.KindCallback).
			Detail("lua line callable must return a table, got %s", rets[0].Type()).
			Build()
	}
	if outT.Len() != len(out) {
		return coordArityError(outT.Len(), len(out))
	}
	for i := range out {
		n, ok := outT.RawGetInt(i + 1).(lua.LNumber)
		if !ok {
			return errors.New(errors.PhaseCallback, errors.KindCallback).
				Detail("lua line result element %d is not a number", i+1).
				Build()
		}
		out[i] = float64(n)
	}
	return nil
}

func (lc *LuaCallable) invokeWindow(window []float64, extra []any, kw map[string]any) (float64, error) {
	winT := floatsToTable(lc.L, window)
	rets, err := lc.call(1, lc.buildArgs(winT, nil, extra, kw)...)
	if err != nil {
		return 0, err
	}
	n, ok := rets[0].(lua.LNumber)
	if !ok {
		return 0, errors.New(errors.PhaseCallback, errors.KindCallback).
			Detail("lua window callable must return a number, got %s", rets[0].Type()).
			Build()
	}
	return float64(n), nil
}

func (lc *LuaCallable) invokeMap(ocoord []int, icoord []float64, extra []any, kw map[string]any) error {
	t := lc.L.CreateTable(len(ocoord), 0)
	for i, c := range ocoord {
		t.RawSetInt(i+1, lua.LNumber(c))
	}
	rets, err := lc.call(1, lc.buildArgs(t, nil, extra, kw)...)
	if err != nil {
		return err
	}
	outT, ok := rets[0].(*lua.LTable)
	if !ok {
		return errors.New(errors.PhaseCallback, errors.KindCallback).
			Detail("lua map callable must return a coordinate table, got %s", rets[0].Type()).
			Build()
	}
	if outT.Len() != len(icoord) {
		return coordArityError(outT.Len(), len(icoord))
	}
	for i := range icoord {
		n, ok := outT.RawGetInt(i + 1).(lua.LNumber)
		if !ok {
			return errors.New(errors.PhaseCallback, errors.KindCallback).
				Detail("lua coordinate %d is not a number", i+1).
				Build()
		}
		icoord[i] = float64(n)
	}
	return nil
}

func (lc *LuaCallable) release() error {
	if lc.ownState && lc.L != nil {
		lc.L.Close()
		lc.L = nil
	}
	return nil
}

func floatsToTable(L *lua.LState, vals []float64) *lua.LTable {
	t := L.CreateTable(len(vals), 0)
	for i, v := range vals {
		t.RawSetInt(i+1, lua.LNumber(v))
	}
	return t
}

func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int32:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float32:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case []float64:
		return floatsToTable(L, x)
	case []int:
		t := L.CreateTable(len(x), 0)
		for i, n := range x {
			t.RawSetInt(i+1, lua.LNumber(n))
		}
		return t
	default:
		return lua.LString(fmt.Sprintf("%v", x))
	}
}
