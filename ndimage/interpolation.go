package ndimage

import (
	ndruntime "github.com/gridpointai/nd-runtime"
	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/callback"
	"github.com/gridpointai/nd-runtime/engine"
)

// SplineFilter1D applies the recursive spline prefilter along axis.
func SplineFilter1D(input, output any, order, axis int) (err error) {
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
	return engine.SplineFilter1D(in, out, order, axis)
}

// GeometricTransform samples the (prefiltered) input at coordinates
// produced by exactly one of: callable (a map callback resolved through
// the signature catalogue), a coordinate array, or an affine matrix
// with optional shift.
func GeometricTransform(input, output any, callable any, coordinates, matrix, shift any, order int, mode ndruntime.ExtendMode, cval float64, opts *callback.Options) (err error) {
	if err := checkMode(mode); err != nil {
		return err
	}

	var mapFn ndruntime.MapFunc
	if callable != nil {
		cb, err := callback.Prepare(callback.ShapeMap, callable, opts)
		if err != nil {
			return err
		}
		defer cb.Release()
		mapFn = cb.Map
	}

	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Float64, array.Standard, "input")
	if err != nil {
		return err
	}
	coords, err := s.OptionalInput(coordinates, array.Float64, array.Standard, "coordinates")
	if err != nil {
		return err
	}
	m, err := floatSeq(s, matrix, "matrix")
	if err != nil {
		return err
	}
	sh, err := floatSeq(s, shift, "shift")
	if err != nil {
		return err
	}
	out, err := s.OutputAt(output, array.Float64, array.Standard, "output")
	if err != nil {
		return err
	}
	return engine.GeometricTransform(in, out, mapFn, coords, m, sh, order, mode, cval)
}

// ZoomShift resamples input onto the output grid: every output
// coordinate maps to ocoord*zoom + shift in input space.
func ZoomShift(input, output any, zoom, shift any, order int, mode ndruntime.ExtendMode, cval float64) (err error) {
	if err := checkMode(mode); err != nil {
		return err
	}
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Float64, array.Standard, "input")
	if err != nil {
		return err
	}
	z, err := floatSeq(s, zoom, "zoom")
	if err != nil {
		return err
	}
	sh, err := floatSeq(s, shift, "shift")
	if err != nil {
		return err
	}
	out, err := s.OutputAt(output, array.Float64, array.Standard, "output")
	if err != nil {
		return err
	}
	return engine.ZoomShift(in, out, z, sh, order, mode, cval)
}
