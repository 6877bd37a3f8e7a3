package engine

import (
	"math"

	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/errors"
)

// FourierKind selects the frequency-domain multiplier family.
type FourierKind int

const (
	// FourierGaussian multiplies by the transform of a gaussian kernel.
	FourierGaussian FourierKind = iota
	// FourierUniform multiplies by the transform of a box kernel.
	FourierUniform
	// FourierEllipsoid multiplies by the transform of an ellipsoid
	// kernel; supported for ranks one to three.
	FourierEllipsoid
)

// FourierFilter multiplies a frequency-domain array elementwise by a
// separable (gaussian, uniform) or radial (ellipsoid) kernel transform.
// params holds one kernel size per axis. A non-negative n marks in as
// the half spectrum of a real transform whose full length along axis
// is n; n < 0 means a full complex spectrum on every axis.
func FourierFilter(in, out *array.Array, params []float64, n, axis int, kind FourierKind) error {
	if err := checkSameShape(in, out); err != nil {
		return err
	}
	rank := in.Rank()
	if len(params) != rank {
		return errors.Engine("%d kernel sizes for rank %d", len(params), rank)
	}
	if n >= 0 {
		var err error
		axis, err = checkAxis(rank, axis)
		if err != nil {
			return err
		}
	}
	if kind == FourierEllipsoid && (rank < 1 || rank > 3) {
		return errors.Engine("ellipsoid kernels support ranks one to three, got %d", rank)
	}

	dims := in.Dims()
	coord := make([]int, rank)
	freqs := make([]float64, rank)
	for i := 0; i < in.Len(); i++ {
		in.Coordinate(i, coord)
		for d := 0; d < rank; d++ {
			k := coord[d]
			length := dims[d]
			if n >= 0 && d == axis {
				// Half spectrum: indices map directly onto [0, n/2].
				length = n
			} else if k > dims[d]/2 {
				k -= dims[d]
			}
			freqs[d] = float64(k) / float64(length)
		}

		mult := 1.0
		switch kind {
		case FourierGaussian:
			for d := 0; d < rank; d++ {
				t := params[d] * 2 * math.Pi * freqs[d]
				mult *= math.Exp(-0.5 * t * t)
			}
		case FourierUniform:
			for d := 0; d < rank; d++ {
				mult *= sinc(params[d] * freqs[d])
			}
		case FourierEllipsoid:
			r2 := 0.0
			for d := 0; d < rank; d++ {
				t := params[d] * freqs[d]
				r2 += t * t
			}
			mult = ellipsoidMultiplier(math.Pi*math.Sqrt(r2), rank)
		}
		out.SetComplex128At(i, in.Complex128At(i)*complex(mult, 0))
	}
	return nil
}

// FourierShift multiplies a frequency-domain array by the phase ramp
// that shifts the spatial-domain array by shifts. n and axis follow the
// same half-spectrum convention as FourierFilter.
func FourierShift(in, out *array.Array, shifts []float64, n, axis int) error {
	if err := checkSameShape(in, out); err != nil {
		return err
	}
	rank := in.Rank()
	if len(shifts) != rank {
		return errors.Engine("%d shifts for rank %d", len(shifts), rank)
	}
	if n >= 0 {
		var err error
		axis, err = checkAxis(rank, axis)
		if err != nil {
			return err
		}
	}

	dims := in.Dims()
	coord := make([]int, rank)
	for i := 0; i < in.Len(); i++ {
		in.Coordinate(i, coord)
		phase := 0.0
		for d := 0; d < rank; d++ {
			k := coord[d]
			length := dims[d]
			if n >= 0 && d == axis {
				length = n
			} else if k > dims[d]/2 {
				k -= dims[d]
			}
			phase -= 2 * math.Pi * shifts[d] * float64(k) / float64(length)
		}
		s, c := math.Sincos(phase)
		out.SetComplex128At(i, in.Complex128At(i)*complex(c, s))
	}
	return nil
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	t := math.Pi * x
	return math.Sin(t) / t
}

// ellipsoidMultiplier evaluates the radial kernel transform at x for
// the given rank: a box in 1D, a disk in 2D, a ball in 3D.
func ellipsoidMultiplier(x float64, rank int) float64 {
	if x == 0 {
		return 1
	}
	switch rank {
	case 1:
		return math.Sin(x) / x
	case 2:
		return 2 * math.J1(x) / x
	case 3:
		return 3 * (math.Sin(x) - x*math.Cos(x)) / (x * x * x)
	}
	return 1
}
