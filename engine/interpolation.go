package engine

import (
	"math"

	ndruntime "github.com/gridpointai/nd-runtime"
	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/errors"
)

// splinePoles returns the recursive filter poles for a spline order.
// Orders zero and one need no filtering.
func splinePoles(order int) ([]float64, error) {
	switch order {
	case 0, 1:
		return nil, nil
	case 2:
		return []float64{math.Sqrt(8) - 3}, nil
	case 3:
		return []float64{math.Sqrt(3) - 2}, nil
	case 4:
		return []float64{
			math.Sqrt(664-math.Sqrt(438976)) + math.Sqrt(304) - 19,
			math.Sqrt(664+math.Sqrt(438976)) - math.Sqrt(304) - 19,
		}, nil
	case 5:
		return []float64{
			math.Sqrt(67.5-math.Sqrt(4436.25)) + math.Sqrt(26.25) - 6.5,
			math.Sqrt(67.5+math.Sqrt(4436.25)) - math.Sqrt(26.25) - 6.5,
		}, nil
	}
	return nil, errors.Engine("spline order %d out of range", order)
}

// SplineFilter1D applies the recursive prefilter along one axis so that
// spline interpolation of the result reproduces the original samples.
// Orders zero and one copy the input through.
func SplineFilter1D(in, out *array.Array, order, axis int) error {
	axis, err := checkAxis(in.Rank(), axis)
	if err != nil {
		return err
	}
	if err := checkSameShape(in, out); err != nil {
		return err
	}
	poles, err := splinePoles(order)
	if err != nil {
		return err
	}

	n := in.Dim(axis)
	stride := in.Strides()[axis]
	ostride := out.Strides()[axis]
	line := make([]float64, n)

	gain := 1.0
	for _, p := range poles {
		gain *= (1 - p) * (1 - 1/p)
	}

	return forEachLine(in.Dims(), in.Strides(), axis, func(base int) error {
		readLine(in, base, stride, line)
		if len(poles) > 0 && n > 1 {
			for i := range line {
				line[i] *= gain
			}
			for _, p := range poles {
				filterPole(line, p)
			}
		}
		writeLine(out, base, ostride, line)
		return nil
	})
}

// filterPole runs one causal/anticausal recursion pair in place,
// using mirror-symmetric boundary conditions.
func filterPole(c []float64, p float64) {
	n := len(c)

	// Causal initialization for mirror-symmetric boundaries. The sum
	// is truncated once pole powers drop below double precision; short
	// lines use the exact closed form over one full mirror period.
	horizon := int(math.Ceil(math.Log(1e-15) / math.Log(math.Abs(p))))
	var sum float64
	if horizon < n {
		sum = c[0]
		zk := p
		for k := 1; k < horizon; k++ {
			sum += zk * c[k]
			zk *= p
		}
	} else {
		zk := p
		z2k := math.Pow(p, float64(n-1))
		sum = c[0] + z2k*c[n-1]
		z2k *= z2k / p
		for k := 1; k < n-1; k++ {
			sum += (zk + z2k) * c[k]
			zk *= p
			z2k /= p
		}
		sum /= 1 - math.Pow(p, float64(2*n-2))
	}
	c[0] = sum

	for i := 1; i < n; i++ {
		c[i] += p * c[i-1]
	}
	c[n-1] = (p / (p*p - 1)) * (c[n-1] + p*c[n-2])
	for i := n - 2; i >= 0; i-- {
		c[i] = p * (c[i+1] - c[i])
	}
}

// splineWeights fills w with the order+1 interpolation weights for
// position x and returns the index of the first contributing sample.
func splineWeights(order int, x float64, w []float64) int {
	var start int
	if order%2 == 1 {
		start = int(math.Floor(x)) - order/2
	} else {
		start = int(math.Floor(x+0.5)) - order/2
	}
	for j := 0; j <= order; j++ {
		w[j] = bspline(order, x-float64(start+j))
	}
	return start
}

// bspline evaluates the centered cardinal B-spline of the given degree.
func bspline(degree int, u float64) float64 {
	if degree == 0 {
		if u >= -0.5 && u < 0.5 {
			return 1
		}
		return 0
	}
	h := float64(degree+1) / 2
	return ((u+h)*bspline(degree-1, u+0.5) + (h-u)*bspline(degree-1, u-0.5)) / float64(degree)
}

// interpolateAt samples a prefiltered input at a fractional coordinate
// using spline weights of the given order. Out-of-range samples follow
// mode; under ExtendConstant a coordinate outside the array yields cval.
func interpolateAt(in *array.Array, icoord []float64, order int, mode ndruntime.ExtendMode, cval float64) float64 {
	rank := in.Rank()
	dims := in.Dims()

	if mode == ndruntime.ExtendConstant {
		for d := 0; d < rank; d++ {
			if icoord[d] < -0.5 || icoord[d] > float64(dims[d])-0.5 {
				return cval
			}
		}
	}

	starts := make([]int, rank)
	weights := make([][]float64, rank)
	for d := 0; d < rank; d++ {
		weights[d] = make([]float64, order+1)
		starts[d] = splineWeights(order, icoord[d], weights[d])
	}

	idx := make([]int, rank)
	coord := make([]int, rank)
	var sum float64
	for {
		wprod := 1.0
		inside := true
		for d := 0; d < rank; d++ {
			wprod *= weights[d][idx[d]]
			j := extendIndex(starts[d]+idx[d], dims[d], mode)
			if j < 0 {
				inside = false
				break
			}
			coord[d] = j
		}
		if inside {
			sum += wprod * in.Float64At(in.FlatIndex(coord))
		} else {
			sum += wprod * cval
		}
		d := rank - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] <= order {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			return sum
		}
	}
}

// GeometricTransform maps every output coordinate to an input
// coordinate and samples the (already prefiltered) input there.
// Exactly one coordinate source must be supplied: a map callback, a
// coordinate array of shape [input rank] + output dims, or an affine
// matrix (flat, input rank by output rank, or a diagonal of length
// input rank) with an optional shift.
func GeometricTransform(in, out *array.Array, mapFn ndruntime.MapFunc, coords *array.Array, matrix, shift []float64, order int, mode ndruntime.ExtendMode, cval float64) error {
	if order < 0 || order > 5 {
		return errors.Engine("spline order %d out of range", order)
	}
	irank := in.Rank()
	orank := out.Rank()

	sources := 0
	if mapFn != nil {
		sources++
	}
	if coords != nil {
		sources++
	}
	if matrix != nil {
		sources++
	}
	if sources != 1 {
		return errors.Engine("exactly one coordinate source required, got %d", sources)
	}

	if coords != nil {
		if coords.Rank() != orank+1 || coords.Dim(0) != irank {
			return errors.ShapeMismatch(errors.PhaseKernel, nil,
				"coordinate array %v does not cover input rank %d plus output dims %v",
				coords.Dims(), irank, out.Dims())
		}
		for d := 0; d < orank; d++ {
			if coords.Dim(d+1) != out.Dim(d) {
				return errors.ShapeMismatch(errors.PhaseKernel, nil,
					"coordinate array %v does not cover input rank %d plus output dims %v",
					coords.Dims(), irank, out.Dims())
			}
		}
	}
	diagonal := false
	if matrix != nil {
		switch len(matrix) {
		case irank * orank:
		case irank:
			diagonal = true
		default:
			return errors.Engine("matrix of %d elements for input rank %d and output rank %d",
				len(matrix), irank, orank)
		}
		if shift != nil && len(shift) != irank {
			return errors.Engine("%d shifts for input rank %d", len(shift), irank)
		}
	}

	ocoord := make([]int, orank)
	icoord := make([]float64, irank)
	outLen := out.Len()
	for i := 0; i < outLen; i++ {
		out.Coordinate(i, ocoord)
		switch {
		case mapFn != nil:
			if err := mapFn(ocoord, icoord); err != nil {
				return errors.Wrap(errors.PhaseKernel, errors.KindCallback, err, "coordinate callback failed")
			}
		case coords != nil:
			for d := 0; d < irank; d++ {
				icoord[d] = coords.Float64At(d*outLen + i)
			}
		default:
			for d := 0; d < irank; d++ {
				var cc float64
				if diagonal {
					cc = matrix[d] * float64(ocoord[d])
				} else {
					for e := 0; e < orank; e++ {
						cc += matrix[d*orank+e] * float64(ocoord[e])
					}
				}
				if shift != nil {
					cc += shift[d]
				}
				icoord[d] = cc
			}
		}
		out.SetFloat64At(i, interpolateAt(in, icoord, order, mode, cval))
	}
	return nil
}

// ZoomShift resamples in onto out's grid: each output coordinate maps
// to ocoord*zoom + shift in input space (nil slices mean identity).
func ZoomShift(in, out *array.Array, zooms, shifts []float64, order int, mode ndruntime.ExtendMode, cval float64) error {
	if order < 0 || order > 5 {
		return errors.Engine("spline order %d out of range", order)
	}
	rank := in.Rank()
	if out.Rank() != rank {
		return errors.ShapeMismatch(errors.PhaseKernel, nil,
			"output rank %d does not match input rank %d", out.Rank(), rank)
	}
	if zooms != nil && len(zooms) != rank {
		return errors.Engine("%d zoom factors for rank %d", len(zooms), rank)
	}
	if shifts != nil && len(shifts) != rank {
		return errors.Engine("%d shifts for rank %d", len(shifts), rank)
	}

	ocoord := make([]int, rank)
	icoord := make([]float64, rank)
	for i := 0; i < out.Len(); i++ {
		out.Coordinate(i, ocoord)
		for d := 0; d < rank; d++ {
			cc := float64(ocoord[d])
			if zooms != nil {
				cc *= zooms[d]
			}
			if shifts != nil {
				cc += shifts[d]
			}
			icoord[d] = cc
		}
		out.SetFloat64At(i, interpolateAt(in, icoord, order, mode, cval))
	}
	return nil
}
