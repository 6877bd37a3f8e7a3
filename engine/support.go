package engine

import (
	ndruntime "github.com/gridpointai/nd-runtime"
	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/errors"
)

// extendIndex resolves an index that may fall outside [0, n) according
// to the extend mode. It returns -1 for ExtendConstant out-of-range
// samples; callers substitute the constant value.
func extendIndex(i, n int, mode ndruntime.ExtendMode) int {
	if i >= 0 && i < n {
		return i
	}
	if n == 1 {
		if mode == ndruntime.ExtendConstant {
			return -1
		}
		return 0
	}
	switch mode {
	case ndruntime.ExtendNearest:
		if i < 0 {
			return 0
		}
		return n - 1
	case ndruntime.ExtendWrap:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	case ndruntime.ExtendReflect:
		// period 2n: (d c b a | a b c d | d c b a)
		p := 2 * n
		i %= p
		if i < 0 {
			i += p
		}
		if i >= n {
			i = p - 1 - i
		}
		return i
	case ndruntime.ExtendMirror:
		// period 2n-2: (d c b | a b c d | c b a)
		p := 2*n - 2
		i %= p
		if i < 0 {
			i += p
		}
		if i >= n {
			i = p - i
		}
		return i
	case ndruntime.ExtendConstant:
		return -1
	}
	return -1
}

// extendLine fills dst with src extended on both sides: before samples
// precede the line, the remainder follows it.
func extendLine(dst []float64, src []float64, before int, mode ndruntime.ExtendMode, cval float64) {
	n := len(src)
	for i := range dst {
		j := extendIndex(i-before, n, mode)
		if j < 0 {
			dst[i] = cval
		} else {
			dst[i] = src[j]
		}
	}
}

// forEachLine visits every line along axis of an array with the given
// dims and element strides, handing the flat base index and the stride
// of the axis to fn. Iteration stops at the first error. A zero-size
// dimension means there are no lines to visit.
func forEachLine(dims, strides []int, axis int, fn func(base int) error) error {
	for _, d := range dims {
		if d == 0 {
			return nil
		}
	}
	coord := make([]int, len(dims))
	for {
		base := 0
		for d, c := range coord {
			base += c * strides[d]
		}
		if err := fn(base); err != nil {
			return err
		}
		// Advance, skipping the line axis.
		d := len(dims) - 1
		for ; d >= 0; d-- {
			if d == axis {
				continue
			}
			coord[d]++
			if coord[d] < dims[d] {
				break
			}
			coord[d] = 0
		}
		if d < 0 {
			return nil
		}
	}
}

// readLine gathers one line along axis into buf.
func readLine(a *array.Array, base, stride int, buf []float64) {
	for i := range buf {
		buf[i] = a.Float64At(base + i*stride)
	}
}

// writeLine scatters buf into one line along axis.
func writeLine(a *array.Array, base, stride int, buf []float64) {
	for i := range buf {
		a.SetFloat64At(base+i*stride, buf[i])
	}
}

func checkAxis(rank, axis int) (int, error) {
	if axis < 0 {
		axis += rank
	}
	if axis < 0 || axis >= rank {
		return 0, errors.Engine("axis %d out of range for rank %d", axis, rank)
	}
	return axis, nil
}

func checkSameShape(a, b *array.Array) error {
	if a.Rank() != b.Rank() {
		return errors.ShapeMismatch(errors.PhaseKernel, nil,
			"rank %d does not match rank %d", a.Rank(), b.Rank())
	}
	for d := 0; d < a.Rank(); d++ {
		if a.Dim(d) != b.Dim(d) {
			return errors.ShapeMismatch(errors.PhaseKernel, nil,
				"dims %v do not match %v", a.Dims(), b.Dims())
		}
	}
	return nil
}

// checkOrigin verifies that a filter of length flen with the given
// origin still overlaps its center element.
func checkOrigin(flen, origin int) error {
	center := flen/2 + origin
	if center < 0 || center >= flen {
		return errors.Engine("origin %d shifts the filter of size %d off its center", origin, flen)
	}
	return nil
}

func fillOrigins(origins []int, rank int) ([]int, error) {
	if origins == nil {
		return make([]int, rank), nil
	}
	if len(origins) != rank {
		return nil, errors.Engine("%d origins for rank %d", len(origins), rank)
	}
	return origins, nil
}

// footprint enumerates the true elements of a structuring array as
// center-relative offsets, honoring per-axis origins.
type footprint struct {
	offsets [][]int   // coordinate offsets, one per active element
	values  []float64 // matching structure values
	scratch []int
}

func buildFootprint(strct *array.Array, origins []int, all bool) (*footprint, error) {
	rank := strct.Rank()
	origins, err := fillOrigins(origins, rank)
	if err != nil {
		return nil, err
	}
	for d := 0; d < rank; d++ {
		if err := checkOrigin(strct.Dim(d), origins[d]); err != nil {
			return nil, err
		}
	}
	fp := &footprint{scratch: make([]int, rank)}
	coord := make([]int, rank)
	for i := 0; i < strct.Len(); i++ {
		strct.Coordinate(i, coord)
		v := strct.Float64At(i)
		if !all && v == 0 {
			continue
		}
		off := make([]int, rank)
		for d := 0; d < rank; d++ {
			off[d] = coord[d] - strct.Dim(d)/2 - origins[d]
		}
		fp.offsets = append(fp.offsets, off)
		fp.values = append(fp.values, v)
	}
	if len(fp.offsets) == 0 {
		return nil, errors.Engine("structuring element has no active elements")
	}
	return fp, nil
}

// gather reads the footprint window centered on coord, extending out of
// bounds per mode.
func (fp *footprint) gather(a *array.Array, dims []int, coord []int, mode ndruntime.ExtendMode, cval float64, window []float64) {
	scratch := fp.scratch
	for w, off := range fp.offsets {
		inside := true
		for d := range dims {
			j := extendIndex(coord[d]+off[d], dims[d], mode)
			if j < 0 {
				inside = false
				break
			}
			scratch[d] = j
		}
		if !inside {
			window[w] = cval
			continue
		}
		window[w] = a.Float64At(a.FlatIndex(scratch))
	}
}
