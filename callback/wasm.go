package callback

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/gridpointai/nd-runtime/errors"
)

// WasmCallable is a low-level callable compiled to WebAssembly. The
// module provides its own context through its linear memory and
// globals; extra positional and named arguments are not delivered
// across the boundary.
//
// Expected exports: the callback function itself, a linear memory, and
// a C-ABI allocator pair (malloc/free) used to stage windows. Length
// parameters may be declared i32 or i64; the calling convention is
// resolved once at load time from the export's signature and governs
// both length parameters and staged output coordinates. Callbacks
// return a nonzero i32 status on success, zero on failure; window
// callbacks return their result as f64 directly.
type WasmCallable struct {
	runtime wazero.Runtime
	module  api.Module
	fn      api.Function
	malloc  api.Function
	free    api.Function
	ctx     context.Context
	width   Width
}

// LoadWasmCallable instantiates wasmBytes and binds the named export.
func LoadWasmCallable(ctx context.Context, wasmBytes []byte, export string) (*WasmCallable, error) {
	r := wazero.NewRuntime(ctx)
	mod, err := r.Instantiate(ctx, wasmBytes)
	if err != nil {
		r.Close(ctx)
		return nil, errors.Callback("wasm module failed to instantiate", err)
	}

	fn := mod.ExportedFunction(export)
	if fn == nil {
		r.Close(ctx)
		return nil, errors.New(errors.PhaseCallback, errors.KindCallback).
			Detail("wasm export %q not found", export).
			Build()
	}
	malloc := mod.ExportedFunction("malloc")
	if malloc == nil {
		r.Close(ctx)
		return nil, errors.New(errors.PhaseCallback, errors.KindCallback).
			Detail("wasm module must export malloc").
			Build()
	}

	// Resolve the calling convention once: any 64-bit parameter marks
	// the wide signature. Pointers are always i32, so only lengths and
	// coordinates can widen.
	width := Width32
	for _, p := range fn.Definition().ParamTypes() {
		if p == api.ValueTypeI64 {
			width = Width64
			break
		}
	}

	return &WasmCallable{
		runtime: r,
		module:  mod,
		fn:      fn,
		malloc:  malloc,
		free:    mod.ExportedFunction("free"),
		ctx:     ctx,
		width:   width,
	}, nil
}

func (w *WasmCallable) alloc(size uint32) (uint32, error) {
	res, err := w.malloc.Call(w.ctx, uint64(size))
	if err != nil || len(res) == 0 || res[0] == 0 {
		return 0, errors.Callback("wasm malloc failed", err)
	}
	return uint32(res[0]), nil
}

func (w *WasmCallable) release2(ptrs ...uint32) {
	if w.free == nil {
		return
	}
	for _, p := range ptrs {
		if p != 0 {
			w.free.Call(w.ctx, uint64(p))
		}
	}
}

func (w *WasmCallable) encodeLen(n int) uint64 {
	if w.width == Width64 {
		return api.EncodeI64(int64(n))
	}
	return api.EncodeI32(int32(n))
}

// coordSize is the byte width of one output coordinate as staged in
// guest memory, following the resolved calling convention.
func (w *WasmCallable) coordSize() uint32 {
	if w.width == Width64 {
		return 8
	}
	return 4
}

func (w *WasmCallable) writeFloats(ptr uint32, vals []float64) error {
	mem := w.module.Memory()
	for i, v := range vals {
		if !mem.WriteFloat64Le(ptr+uint32(i*8), v) {
			return errors.Callback("wasm memory write out of range", nil)
		}
	}
	return nil
}

func (w *WasmCallable) readFloats(ptr uint32, out []float64) error {
	mem := w.module.Memory()
	for i := range out {
		v, ok := mem.ReadFloat64Le(ptr + uint32(i*8))
		if !ok {
			return errors.Callback("wasm memory read out of range", nil)
		}
		out[i] = v
	}
	return nil
}

func (w *WasmCallable) invokeLine(in, out []float64, extra []any, kw map[string]any) error {
	inPtr, err := w.alloc(uint32(len(in) * 8))
	if err != nil {
		return err
	}
	outPtr, err := w.alloc(uint32(len(out) * 8))
	if err != nil {
		w.release2(inPtr)
		return err
	}
	defer w.release2(inPtr, outPtr)

	if err := w.writeFloats(inPtr, in); err != nil {
		return err
	}
	res, err := w.fn.Call(w.ctx,
		api.EncodeI32(int32(inPtr)), w.encodeLen(len(in)),
		api.EncodeI32(int32(outPtr)), w.encodeLen(len(out)))
	if err != nil {
		return errors.Callback("wasm line callable trapped", err)
	}
	if len(res) == 0 || api.DecodeI32(res[0]) == 0 {
		return errors.Callback("wasm line callable reported failure", nil)
	}
	return w.readFloats(outPtr, out)
}

func (w *WasmCallable) invokeWindow(window []float64, extra []any, kw map[string]any) (float64, error) {
	ptr, err := w.alloc(uint32(len(window) * 8))
	if err != nil {
		return 0, err
	}
	defer w.release2(ptr)

	if err := w.writeFloats(ptr, window); err != nil {
		return 0, err
	}
	res, err := w.fn.Call(w.ctx, api.EncodeI32(int32(ptr)), w.encodeLen(len(window)))
	if err != nil {
		return 0, errors.Callback("wasm window callable trapped", err)
	}
	if len(res) == 0 {
		return 0, errors.Callback("wasm window callable returned nothing", nil)
	}
	return api.DecodeF64(res[0]), nil
}

func (w *WasmCallable) invokeMap(ocoord []int, icoord []float64, extra []any, kw map[string]any) error {
	oPtr, err := w.alloc(uint32(len(ocoord)) * w.coordSize())
	if err != nil {
		return err
	}
	iPtr, err := w.alloc(uint32(len(icoord) * 8))
	if err != nil {
		w.release2(oPtr)
		return err
	}
	defer w.release2(oPtr, iPtr)

	mem := w.module.Memory()
	for i, c := range ocoord {
		var ok bool
		if w.width == Width64 {
			ok = mem.WriteUint64Le(oPtr+uint32(i)*8, uint64(int64(c)))
		} else {
			ok = mem.WriteUint32Le(oPtr+uint32(i)*4, uint32(int32(c)))
		}
		if !ok {
			return errors.Callback("wasm memory write out of range", nil)
		}
	}
	res, err := w.fn.Call(w.ctx,
		api.EncodeI32(int32(oPtr)), api.EncodeI32(int32(iPtr)),
		w.encodeLen(len(ocoord)), w.encodeLen(len(icoord)))
	if err != nil {
		return errors.Callback("wasm map callable trapped", err)
	}
	if len(res) == 0 || api.DecodeI32(res[0]) == 0 {
		return errors.Callback("wasm map callable reported failure", nil)
	}
	return w.readFloats(iPtr, icoord)
}

func (w *WasmCallable) release() error {
	if w.runtime != nil {
		err := w.runtime.Close(w.ctx)
		w.runtime = nil
		return err
	}
	return nil
}
