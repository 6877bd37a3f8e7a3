package ndimage

import (
	ndruntime "github.com/gridpointai/nd-runtime"
	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/callback"
	"github.com/gridpointai/nd-runtime/engine"
)

// Correlate1D correlates input with a one-dimensional weights sequence
// along axis.
func Correlate1D(input, output any, axis int, weights any, mode ndruntime.ExtendMode, cval float64, origin int) (err error) {
	if err := checkMode(mode); err != nil {
		return err
	}
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Float64, array.Standard, "input")
	if err != nil {
		return err
	}
	w, err := floatSeq(s, weights, "weights")
	if err != nil {
		return err
	}
	out, err := s.OutputAt(output, array.Float64, array.Standard, "output")
	if err != nil {
		return err
	}
	return engine.Correlate1D(in, out, axis, w, mode, cval, origin)
}

// Correlate performs a full n-dimensional correlation of input with a
// weights array.
func Correlate(input, weights, output any, mode ndruntime.ExtendMode, cval float64, origins any) (err error) {
	if err := checkMode(mode); err != nil {
		return err
	}
	org, err := intSeq(origins)
	if err != nil {
		return err
	}
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Float64, array.Standard, "input")
	if err != nil {
		return err
	}
	w, err := s.InputAt(weights, array.Float64, array.Standard, "weights")
	if err != nil {
		return err
	}
	out, err := s.OutputAt(output, array.Float64, array.Standard, "output")
	if err != nil {
		return err
	}
	return engine.Correlate(in, out, w, mode, cval, org)
}

// UniformFilter1D applies a moving average of the given size along axis.
func UniformFilter1D(input, output any, axis, size int, mode ndruntime.ExtendMode, cval float64, origin int) (err error) {
	if err := checkMode(mode); err != nil {
		return err
	}
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Float64, array.Standard, "input")
	if err != nil {
		return err
	}
	out, err := s.OutputAt(output, array.Float64, array.Standard, "output")
	if err != nil {
		return err
	}
	return engine.UniformFilter1D(in, out, axis, size, mode, cval, origin)
}

// MinOrMaxFilter1D applies a moving minimum or maximum along axis.
func MinOrMaxFilter1D(input, output any, axis, size int, mode ndruntime.ExtendMode, cval float64, origin int, minimum bool) (err error) {
	if err := checkMode(mode); err != nil {
		return err
	}
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Float64, array.Standard, "input")
	if err != nil {
		return err
	}
	out, err := s.OutputAt(output, array.Float64, array.Standard, "output")
	if err != nil {
		return err
	}
	return engine.MinOrMaxFilter1D(in, out, axis, size, mode, cval, origin, minimum)
}

// MinOrMaxFilter applies an n-dimensional minimum or maximum filter
// over a footprint, with an optional additive structure.
func MinOrMaxFilter(input, footprint, structure, output any, mode ndruntime.ExtendMode, cval float64, origins any, minimum bool) (err error) {
	if err := checkMode(mode); err != nil {
		return err
	}
	org, err := intSeq(origins)
	if err != nil {
		return err
	}
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Float64, array.Standard, "input")
	if err != nil {
		return err
	}
	foot, err := s.InputAt(footprint, array.Bool, array.Standard, "footprint")
	if err != nil {
		return err
	}
	strct, err := s.OptionalInput(structure, array.Float64, array.Standard, "structure")
	if err != nil {
		return err
	}
	out, err := s.OutputAt(output, array.Float64, array.Standard, "output")
	if err != nil {
		return err
	}
	return engine.MinOrMaxFilter(in, out, foot, strct, mode, cval, org, minimum)
}

// RankFilter writes the rank-th smallest value of each footprint
// window.
func RankFilter(input any, rank int, footprint, output any, mode ndruntime.ExtendMode, cval float64, origins any) (err error) {
	if err := checkMode(mode); err != nil {
		return err
	}
	org, err := intSeq(origins)
	if err != nil {
		return err
	}
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Float64, array.Standard, "input")
	if err != nil {
		return err
	}
	foot, err := s.InputAt(footprint, array.Bool, array.Standard, "footprint")
	if err != nil {
		return err
	}
	out, err := s.OutputAt(output, array.Float64, array.Standard, "output")
	if err != nil {
		return err
	}
	return engine.RankFilter(in, out, rank, foot, mode, cval, org)
}

// GenericFilter1D hands each boundary-extended line to callable, which
// may be a native line function, a host function, a Lua callable, or a
// wasm callable. opts carries fixed extra arguments for host-level
// callables.
func GenericFilter1D(input, output any, callable any, axis, filterSize int, mode ndruntime.ExtendMode, cval float64, origin int, opts *callback.Options) (err error) {
	if err := checkMode(mode); err != nil {
		return err
	}
	cb, err := callback.Prepare(callback.ShapeLine, callable, opts)
	if err != nil {
		return err
	}
	defer cb.Release()

	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Float64, array.Standard, "input")
	if err != nil {
		return err
	}
	out, err := s.OutputAt(output, array.Float64, array.Standard, "output")
	if err != nil {
		return err
	}
	return engine.GenericFilter1D(in, out, axis, filterSize, cb.Line, mode, cval, origin)
}

// GenericFilter hands each footprint window to callable.
func GenericFilter(input, output any, callable any, footprint any, mode ndruntime.ExtendMode, cval float64, origins any, opts *callback.Options) (err error) {
	if err := checkMode(mode); err != nil {
		return err
	}
	org, err := intSeq(origins)
	if err != nil {
		return err
	}
	cb, err := callback.Prepare(callback.ShapeWindow, callable, opts)
	if err != nil {
		return err
	}
	defer cb.Release()

	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Float64, array.Standard, "input")
	if err != nil {
		return err
	}
	foot, err := s.InputAt(footprint, array.Bool, array.Standard, "footprint")
	if err != nil {
		return err
	}
	out, err := s.OutputAt(output, array.Float64, array.Standard, "output")
	if err != nil {
		return err
	}
	return engine.GenericFilter(in, out, foot, cb.Window, mode, cval, org)
}
