package callback

import (
	"fmt"

	"github.com/gridpointai/nd-runtime/errors"
)

// HostFunc is the dynamic host-level callable form: positional
// arguments followed by named arguments, returning an arbitrary value.
// The trampoline delivers the native window or coordinate data first,
// then the fixed extra positional arguments, on every invocation.
type HostFunc func(args []any, kwargs map[string]any) (any, error)

type hostFuncCallable struct {
	fn HostFunc
}

func (h *hostFuncCallable) invokeLine(in, out []float64, extra []any, kw map[string]any) error {
	// The callable receives fresh copies; the native buffers are owned
	// by the kernel's iteration state.
	inCopy := append([]float64(nil), in...)
	scratch := make([]float64, len(out))
	args := make([]any, 0, 2+len(extra))
	args = append(args, inCopy, scratch)
	args = append(args, extra...)

	if _, err := h.fn(args, kw); err != nil {
		return errors.Callback("line callable failed", err)
	}
	copy(out, scratch)
	return nil
}

func (h *hostFuncCallable) invokeWindow(window []float64, extra []any, kw map[string]any) (float64, error) {
	winCopy := append([]float64(nil), window...)
	args := make([]any, 0, 1+len(extra))
	args = append(args, winCopy)
	args = append(args, extra...)

	rv, err := h.fn(args, kw)
	if err != nil {
		return 0, errors.Callback("window callable failed", err)
	}
	v, ok := toFloat(rv)
	if !ok {
		return 0, errors.New(errors.PhaseCallback, errors.KindCallback).
			GoType(fmt.Sprintf("%T", rv)).
			Detail("window callable must return a number").
			Build()
	}
	return v, nil
}

func (h *hostFuncCallable) invokeMap(ocoord []int, icoord []float64, extra []any, kw map[string]any) error {
	coordCopy := append([]int(nil), ocoord...)
	args := make([]any, 0, 1+len(extra))
	args = append(args, coordCopy)
	args = append(args, extra...)

	rv, err := h.fn(args, kw)
	if err != nil {
		return errors.Callback("coordinate callable failed", err)
	}
	return readCoordinates(rv, icoord)
}

func (h *hostFuncCallable) release() error { return nil }

// readCoordinates reads a returned coordinate tuple element-by-element
// into icoord, rejecting wrong arity and non-numeric elements.
func readCoordinates(rv any, icoord []float64) error {
	var elems []any
	switch v := rv.(type) {
	case []float64:
		if len(v) != len(icoord) {
			return coordArityError(len(v), len(icoord))
		}
		copy(icoord, v)
		return nil
	case []any:
		elems = v
	case []int:
		if len(v) != len(icoord) {
			return coordArityError(len(v), len(icoord))
		}
		for i, x := range v {
			icoord[i] = float64(x)
		}
		return nil
	default:
		return errors.New(errors.PhaseCallback, errors.KindCallback).
			GoType(fmt.Sprintf("%T", rv)).
			Detail("coordinate callable must return a coordinate sequence").
			Build()
	}
	if len(elems) != len(icoord) {
		return coordArityError(len(elems), len(icoord))
	}
	for i, e := range elems {
		v, ok := toFloat(e)
		if !ok {
			return errors.New(errors.PhaseCallback, errors.KindCallback).
				GoType(fmt.Sprintf("%T", e)).
				Detail("coordinate %d is not numeric", i).
				Build()
		}
		icoord[i] = v
	}
	return nil
}

func coordArityError(got, want int) error {
	return errors.New(errors.PhaseCallback, errors.KindCallback).
		Detail("coordinate callable returned %d coordinates, want %d", got, want).
		Build()
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
