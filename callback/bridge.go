package callback

import (
	"fmt"

	ndruntime "github.com/gridpointai/nd-runtime"
	"github.com/gridpointai/nd-runtime/errors"
)

// Native pairs an already-native callable with an opaque context. The
// context is handed to the callable on every invocation; no trampoline
// or marshaling is involved.
type Native struct {
	Func any
	Data any
}

// Options carries the fixed extra arguments delivered to host-level
// callables on every invocation, appended after the native window or
// coordinate data.
type Options struct {
	// ExtraArgs must be a []any when set.
	ExtraArgs any
	// ExtraKeywords must be a map[string]any when set.
	ExtraKeywords any
}

func (o *Options) validate() ([]any, map[string]any, error) {
	if o == nil {
		return nil, nil, nil
	}
	var extra []any
	var kw map[string]any
	if o.ExtraArgs != nil {
		var ok bool
		extra, ok = o.ExtraArgs.([]any)
		if !ok {
			return nil, nil, errors.New(errors.PhaseCallback, errors.KindCallback).
				GoType(fmt.Sprintf("%T", o.ExtraArgs)).
				Detail("extra arguments must be a []any").
				Build()
		}
	}
	if o.ExtraKeywords != nil {
		var ok bool
		kw, ok = o.ExtraKeywords.(map[string]any)
		if !ok {
			return nil, nil, errors.New(errors.PhaseCallback, errors.KindCallback).
				GoType(fmt.Sprintf("%T", o.ExtraKeywords)).
				Detail("extra keywords must be a map[string]any").
				Build()
		}
	}
	return extra, kw, nil
}

// hostCallable is the marshaling side of the bridge: one implementation
// per host-level callable family.
type hostCallable interface {
	invokeLine(in, out []float64, extra []any, kw map[string]any) error
	invokeWindow(window []float64, extra []any, kw map[string]any) (float64, error)
	invokeMap(ocoord []int, icoord []float64, extra []any, kw map[string]any) error
	release() error
}

// Callback is a resolved callable ready for the engine. Exactly one of
// Line, Window, or Map is non-nil, matching the shape it was prepared
// for. Release must run on every exit path of the owning call.
type Callback struct {
	Line   ndruntime.LineFunc
	Window ndruntime.WindowFunc
	Map    ndruntime.MapFunc

	host     hostCallable
	shape    Shape
	width    Width
	native   bool
	released bool
}

// Shape returns the call shape this callback was prepared for.
func (c *Callback) Shape() Shape { return c.shape }

// Width returns the resolved native integer width (native bindings only).
func (c *Callback) Width() Width { return c.width }

// IsNative reports whether the callable was bound without a trampoline.
func (c *Callback) IsNative() bool { return c.native }

// Release frees resolved signature metadata and any resources held by
// the callable. It is idempotent.
func (c *Callback) Release() error {
	if c == nil || c.released {
		return nil
	}
	c.released = true
	if c.host != nil {
		return c.host.release()
	}
	return nil
}

// Prepare resolves callable for the given shape. Resolution happens
// once here, never per invocation.
//
// A Native value (or a bare function matching a catalogue entry) binds
// directly. HostFunc, *LuaCallable, and *WasmCallable are wrapped by a
// marshaling trampoline carrying opts. Anything else fails with a
// callback error naming the catalogue entries tried.
func Prepare(shape Shape, callable any, opts *Options) (*Callback, error) {
	extra, kw, err := opts.validate()
	if err != nil {
		return nil, err
	}
	if callable == nil {
		return nil, errors.Callback("nil callable", nil)
	}

	fn := callable
	var data any
	switch n := callable.(type) {
	case Native:
		fn, data = n.Func, n.Data
	case *Native:
		if n != nil {
			fn, data = n.Func, n.Data
		}
	}

	cb := &Callback{shape: shape}

	if bindNormalized(cb, shape, fn) {
		cb.native = true
		return cb, nil
	}

	cat := DefaultCatalogue(shape)
	for _, e := range cat {
		if !e.Width.supported() {
			continue
		}
		if bindCatalogue(cb, shape, e.Width, fn, data) {
			cb.native = true
			cb.width = e.Width
			return cb, nil
		}
	}

	var host hostCallable
	switch h := fn.(type) {
	case HostFunc:
		host = &hostFuncCallable{fn: h}
	case func(args []any, kwargs map[string]any) (any, error):
		host = &hostFuncCallable{fn: h}
	case *LuaCallable:
		host = h
	case *WasmCallable:
		host = h
	}
	if host == nil {
		return nil, errors.NoSignature(fmt.Sprintf("%T", callable), cat.names())
	}
	if _, ok := host.(*WasmCallable); ok && (len(extra) > 0 || len(kw) > 0) {
		return nil, errors.New(errors.PhaseCallback, errors.KindCallback).
			Detail("wasm callables carry their own context; extra arguments are not supported").
			Build()
	}

	cb.host = host
	switch shape {
	case ShapeLine:
		cb.Line = func(in, out []float64) error {
			return host.invokeLine(in, out, extra, kw)
		}
	case ShapeWindow:
		cb.Window = func(window []float64) (float64, error) {
			return host.invokeWindow(window, extra, kw)
		}
	case ShapeMap:
		cb.Map = func(ocoord []int, icoord []float64) error {
			return host.invokeMap(ocoord, icoord, extra, kw)
		}
	}
	return cb, nil
}

// bindNormalized accepts callables already in the engine's normalized
// form.
func bindNormalized(cb *Callback, shape Shape, fn any) bool {
	switch f := fn.(type) {
	case ndruntime.LineFunc:
		if shape == ShapeLine {
			cb.Line = f
			return true
		}
	case func(in, out []float64) error:
		if shape == ShapeLine {
			cb.Line = f
			return true
		}
	case ndruntime.WindowFunc:
		if shape == ShapeWindow {
			cb.Window = f
			return true
		}
	case func(window []float64) (float64, error):
		if shape == ShapeWindow {
			cb.Window = f
			return true
		}
	case ndruntime.MapFunc:
		if shape == ShapeMap {
			cb.Map = f
			return true
		}
	case func(out []int, in []float64) error:
		if shape == ShapeMap {
			cb.Map = f
			return true
		}
	}
	return false
}

// bindCatalogue matches fn against one catalogue entry and, on match,
// installs a direct binding that closes over the opaque context.
func bindCatalogue(cb *Callback, shape Shape, width Width, fn, data any) bool {
	switch shape {
	case ShapeLine:
		switch width {
		case WidthNative:
			if f := asLineFuncN(fn); f != nil {
				cb.Line = func(in, out []float64) error {
					return f(in, len(in), out, len(out), data)
				}
				return true
			}
		case Width32:
			if f := asLineFunc32(fn); f != nil {
				cb.Line = func(in, out []float64) error {
					return f(in, int32(len(in)), out, int32(len(out)), data)
				}
				return true
			}
		case Width64:
			if f := asLineFunc64(fn); f != nil {
				cb.Line = func(in, out []float64) error {
					return f(in, int64(len(in)), out, int64(len(out)), data)
				}
				return true
			}
		}
	case ShapeWindow:
		switch width {
		case WidthNative:
			if f := asWindowFuncN(fn); f != nil {
				cb.Window = func(window []float64) (float64, error) {
					var out float64
					if err := f(window, len(window), &out, data); err != nil {
						return 0, err
					}
					return out, nil
				}
				return true
			}
		case Width32:
			if f := asWindowFunc32(fn); f != nil {
				cb.Window = func(window []float64) (float64, error) {
					var out float64
					if err := f(window, int32(len(window)), &out, data); err != nil {
						return 0, err
					}
					return out, nil
				}
				return true
			}
		case Width64:
			if f := asWindowFunc64(fn); f != nil {
				cb.Window = func(window []float64) (float64, error) {
					var out float64
					if err := f(window, int64(len(window)), &out, data); err != nil {
						return 0, err
					}
					return out, nil
				}
				return true
			}
		}
	case ShapeMap:
		switch width {
		case WidthNative:
			if f := asMapFuncN(fn); f != nil {
				cb.Map = func(ocoord []int, icoord []float64) error {
					return f(ocoord, icoord, len(ocoord), len(icoord), data)
				}
				return true
			}
		case Width32:
			if f := asMapFunc32(fn); f != nil {
				cb.Map = func(ocoord []int, icoord []float64) error {
					oc := make([]int32, len(ocoord))
					for i, v := range ocoord {
						oc[i] = int32(v)
					}
					return f(oc, icoord, len(ocoord), len(icoord), data)
				}
				return true
			}
		case Width64:
			if f := asMapFunc64(fn); f != nil {
				cb.Map = func(ocoord []int, icoord []float64) error {
					oc := make([]int64, len(ocoord))
					for i, v := range ocoord {
						oc[i] = int64(v)
					}
					return f(oc, icoord, len(ocoord), len(icoord), data)
				}
				return true
			}
		}
	}
	return false
}

// The as* helpers accept both the named catalogue types and their
// underlying function signatures.

func asLineFuncN(fn any) LineFuncN {
	switch f := fn.(type) {
	case LineFuncN:
		return f
	case func(in []float64, ilen int, out []float64, olen int, data any) error:
		return f
	}
	return nil
}

func asLineFunc32(fn any) LineFunc32 {
	switch f := fn.(type) {
	case LineFunc32:
		return f
	case func(in []float64, ilen int32, out []float64, olen int32, data any) error:
		return f
	}
	return nil
}

func asLineFunc64(fn any) LineFunc64 {
	switch f := fn.(type) {
	case LineFunc64:
		return f
	case func(in []float64, ilen int64, out []float64, olen int64, data any) error:
		return f
	}
	return nil
}

func asWindowFuncN(fn any) WindowFuncN {
	switch f := fn.(type) {
	case WindowFuncN:
		return f
	case func(window []float64, n int, out *float64, data any) error:
		return f
	}
	return nil
}

func asWindowFunc32(fn any) WindowFunc32 {
	switch f := fn.(type) {
	case WindowFunc32:
		return f
	case func(window []float64, n int32, out *float64, data any) error:
		return f
	}
	return nil
}

func asWindowFunc64(fn any) WindowFunc64 {
	switch f := fn.(type) {
	case WindowFunc64:
		return f
	case func(window []float64, n int64, out *float64, data any) error:
		return f
	}
	return nil
}

func asMapFuncN(fn any) MapFuncN {
	switch f := fn.(type) {
	case MapFuncN:
		return f
	case func(ocoord []int, icoord []float64, orank, irank int, data any) error:
		return f
	}
	return nil
}

func asMapFunc32(fn any) MapFunc32 {
	switch f := fn.(type) {
	case MapFunc32:
		return f
	case func(ocoord []int32, icoord []float64, orank, irank int, data any) error:
		return f
	}
	return nil
}

func asMapFunc64(fn any) MapFunc64 {
	switch f := fn.(type) {
	case MapFunc64:
		return f
	case func(ocoord []int64, icoord []float64, orank, irank int, data any) error:
		return f
	}
	return nil
}
