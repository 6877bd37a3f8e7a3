package ndimage

import (
	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/engine"
)

// FourierFilter multiplies a frequency-domain array elementwise by the
// transform of a gaussian, uniform, or ellipsoid kernel. params holds
// one kernel size per axis. A non-negative n marks the input as the
// half spectrum of a real transform of length n along axis.
func FourierFilter(input, params any, n, axis int, output any, kind FourierKind) (err error) {
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Complex128, array.Standard, "input")
	if err != nil {
		return err
	}
	p, err := floatSeq(s, params, "parameters")
	if err != nil {
		return err
	}
	out, err := s.OutputAt(output, array.Complex128, array.Standard, "output")
	if err != nil {
		return err
	}
	return engine.FourierFilter(in, out, p, n, axis, kind)
}

// FourierShift multiplies a frequency-domain array by the phase ramp
// shifting the spatial array by shifts.
func FourierShift(input, shifts any, n, axis int, output any) (err error) {
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Complex128, array.Standard, "input")
	if err != nil {
		return err
	}
	sh, err := floatSeq(s, shifts, "shifts")
	if err != nil {
		return err
	}
	out, err := s.OutputAt(output, array.Complex128, array.Standard, "output")
	if err != nil {
		return err
	}
	return engine.FourierShift(in, out, sh, n, axis)
}
