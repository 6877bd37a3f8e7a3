package engine

import (
	"sort"

	ndruntime "github.com/gridpointai/nd-runtime"
	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/errors"
)

// Correlate1D correlates in with weights along one axis and writes the
// result to out.
func Correlate1D(in, out *array.Array, axis int, weights []float64, mode ndruntime.ExtendMode, cval float64, origin int) error {
	axis, err := checkAxis(in.Rank(), axis)
	if err != nil {
		return err
	}
	if err := checkSameShape(in, out); err != nil {
		return err
	}
	if len(weights) == 0 {
		return errors.Engine("empty weights")
	}
	if err := checkOrigin(len(weights), origin); err != nil {
		return err
	}

	n := in.Dim(axis)
	stride := in.Strides()[axis]
	ostride := out.Strides()[axis]
	before := len(weights)/2 + origin
	line := make([]float64, n)
	ext := make([]float64, n+len(weights)-1)
	res := make([]float64, n)

	return forEachLine(in.Dims(), in.Strides(), axis, func(base int) error {
		readLine(in, base, stride, line)
		extendLine(ext, line, before, mode, cval)
		for i := 0; i < n; i++ {
			sum := 0.0
			for j, w := range weights {
				sum += w * ext[i+j]
			}
			res[i] = sum
		}
		writeLine(out, base, ostride, res)
		return nil
	})
}

// Correlate performs a full n-dimensional correlation of in with the
// weights array.
func Correlate(in, out, weights *array.Array, mode ndruntime.ExtendMode, cval float64, origins []int) error {
	if err := checkSameShape(in, out); err != nil {
		return err
	}
	if weights.Rank() != in.Rank() {
		return errors.Engine("weights rank %d does not match input rank %d", weights.Rank(), in.Rank())
	}
	fp, err := buildFootprint(weights, origins, true)
	if err != nil {
		return err
	}

	dims := in.Dims()
	coord := make([]int, in.Rank())
	window := make([]float64, len(fp.offsets))
	for i := 0; i < out.Len(); i++ {
		out.Coordinate(i, coord)
		fp.gather(in, dims, coord, mode, cval, window)
		sum := 0.0
		for w, v := range window {
			sum += fp.values[w] * v
		}
		out.SetFloat64At(i, sum)
	}
	return nil
}

// UniformFilter1D applies a moving average of the given size along one
// axis, using an incremental running sum.
func UniformFilter1D(in, out *array.Array, axis, size int, mode ndruntime.ExtendMode, cval float64, origin int) error {
	axis, err := checkAxis(in.Rank(), axis)
	if err != nil {
		return err
	}
	if err := checkSameShape(in, out); err != nil {
		return err
	}
	if size < 1 {
		return errors.Engine("uniform filter size %d", size)
	}
	if err := checkOrigin(size, origin); err != nil {
		return err
	}

	n := in.Dim(axis)
	stride := in.Strides()[axis]
	ostride := out.Strides()[axis]
	before := size/2 + origin
	line := make([]float64, n)
	ext := make([]float64, n+size-1)
	res := make([]float64, n)

	return forEachLine(in.Dims(), in.Strides(), axis, func(base int) error {
		readLine(in, base, stride, line)
		extendLine(ext, line, before, mode, cval)
		sum := 0.0
		for j := 0; j < size; j++ {
			sum += ext[j]
		}
		res[0] = sum / float64(size)
		for i := 1; i < n; i++ {
			sum += ext[i+size-1] - ext[i-1]
			res[i] = sum / float64(size)
		}
		writeLine(out, base, ostride, res)
		return nil
	})
}

// MinOrMaxFilter1D applies a moving minimum or maximum of the given
// size along one axis.
func MinOrMaxFilter1D(in, out *array.Array, axis, size int, mode ndruntime.ExtendMode, cval float64, origin int, minimum bool) error {
	axis, err := checkAxis(in.Rank(), axis)
	if err != nil {
		return err
	}
	if err := checkSameShape(in, out); err != nil {
		return err
	}
	if size < 1 {
		return errors.Engine("min/max filter size %d", size)
	}
	if err := checkOrigin(size, origin); err != nil {
		return err
	}

	n := in.Dim(axis)
	stride := in.Strides()[axis]
	ostride := out.Strides()[axis]
	before := size/2 + origin
	line := make([]float64, n)
	ext := make([]float64, n+size-1)
	res := make([]float64, n)

	return forEachLine(in.Dims(), in.Strides(), axis, func(base int) error {
		readLine(in, base, stride, line)
		extendLine(ext, line, before, mode, cval)
		for i := 0; i < n; i++ {
			best := ext[i]
			for j := 1; j < size; j++ {
				v := ext[i+j]
				if minimum == (v < best) {
					best = v
				}
			}
			res[i] = best
		}
		writeLine(out, base, ostride, res)
		return nil
	})
}

// MinOrMaxFilter applies an n-dimensional minimum or maximum filter
// over a footprint, with an optional additive structure (grayscale
// erosion and dilation use nonzero structures).
func MinOrMaxFilter(in, out, foot *array.Array, structure *array.Array, mode ndruntime.ExtendMode, cval float64, origins []int, minimum bool) error {
	if err := checkSameShape(in, out); err != nil {
		return err
	}
	if foot.Rank() != in.Rank() {
		return errors.Engine("footprint rank %d does not match input rank %d", foot.Rank(), in.Rank())
	}
	fp, err := buildFootprint(foot, origins, false)
	if err != nil {
		return err
	}

	var structVals []float64
	if structure != nil {
		if err := checkSameShape(foot, structure); err != nil {
			return err
		}
		structVals = make([]float64, 0, len(fp.offsets))
		for i := 0; i < foot.Len(); i++ {
			if foot.Float64At(i) == 0 {
				continue
			}
			structVals = append(structVals, structure.Float64At(i))
		}
	}

	dims := in.Dims()
	coord := make([]int, in.Rank())
	window := make([]float64, len(fp.offsets))
	for i := 0; i < out.Len(); i++ {
		out.Coordinate(i, coord)
		fp.gather(in, dims, coord, mode, cval, window)
		if structVals != nil {
			for w := range window {
				if minimum {
					window[w] -= structVals[w]
				} else {
					window[w] += structVals[w]
				}
			}
		}
		best := window[0]
		for _, v := range window[1:] {
			if minimum == (v < best) {
				best = v
			}
		}
		out.SetFloat64At(i, best)
	}
	return nil
}

// RankFilter writes the rank-th smallest value of each footprint window.
func RankFilter(in, out *array.Array, rank int, foot *array.Array, mode ndruntime.ExtendMode, cval float64, origins []int) error {
	if err := checkSameShape(in, out); err != nil {
		return err
	}
	fp, err := buildFootprint(foot, origins, false)
	if err != nil {
		return err
	}
	if rank < 0 || rank >= len(fp.offsets) {
		return errors.Engine("rank %d out of range for footprint of %d elements", rank, len(fp.offsets))
	}

	dims := in.Dims()
	coord := make([]int, in.Rank())
	window := make([]float64, len(fp.offsets))
	sorted := make([]float64, len(fp.offsets))
	for i := 0; i < out.Len(); i++ {
		out.Coordinate(i, coord)
		fp.gather(in, dims, coord, mode, cval, window)
		copy(sorted, window)
		sort.Float64s(sorted)
		out.SetFloat64At(i, sorted[rank])
	}
	return nil
}

// GenericFilter1D hands each boundary-extended line to a line callback.
// The callback sees filterSize-1 extra samples and must fill the output
// line completely. The first callback error aborts the kernel.
func GenericFilter1D(in, out *array.Array, axis, filterSize int, fn ndruntime.LineFunc, mode ndruntime.ExtendMode, cval float64, origin int) error {
	axis, err := checkAxis(in.Rank(), axis)
	if err != nil {
		return err
	}
	if err := checkSameShape(in, out); err != nil {
		return err
	}
	if filterSize < 1 {
		return errors.Engine("filter size %d", filterSize)
	}
	if err := checkOrigin(filterSize, origin); err != nil {
		return err
	}
	if fn == nil {
		return errors.Engine("nil line callback")
	}

	n := in.Dim(axis)
	stride := in.Strides()[axis]
	ostride := out.Strides()[axis]
	before := filterSize/2 + origin
	line := make([]float64, n)
	ext := make([]float64, n+filterSize-1)
	res := make([]float64, n)

	return forEachLine(in.Dims(), in.Strides(), axis, func(base int) error {
		readLine(in, base, stride, line)
		extendLine(ext, line, before, mode, cval)
		if err := fn(ext, res); err != nil {
			return errors.Wrap(errors.PhaseKernel, errors.KindCallback, err, "line callback failed")
		}
		writeLine(out, base, ostride, res)
		return nil
	})
}

// GenericFilter hands each footprint window to a scalar callback. The
// first callback error aborts the kernel.
func GenericFilter(in, out, foot *array.Array, fn ndruntime.WindowFunc, mode ndruntime.ExtendMode, cval float64, origins []int) error {
	if err := checkSameShape(in, out); err != nil {
		return err
	}
	fp, err := buildFootprint(foot, origins, false)
	if err != nil {
		return err
	}
	if fn == nil {
		return errors.Engine("nil window callback")
	}

	dims := in.Dims()
	coord := make([]int, in.Rank())
	window := make([]float64, len(fp.offsets))
	for i := 0; i < out.Len(); i++ {
		out.Coordinate(i, coord)
		fp.gather(in, dims, coord, mode, cval, window)
		v, err := fn(window)
		if err != nil {
			return errors.Wrap(errors.PhaseKernel, errors.KindCallback, err, "window callback failed")
		}
		out.SetFloat64At(i, v)
	}
	return nil
}
