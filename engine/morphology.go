package engine

import (
	"math"

	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/errors"
)

// truth maps a stored element to erosion truth space. With invert set
// the roles of foreground and background swap, which turns erosion
// into dilation over the complement.
func truth(v float64, invert bool) bool {
	return (v != 0) != invert
}

// erodeAt evaluates the erosion condition at coord: every active
// structure offset must land on a true element, with out-of-bounds
// samples reading as the border value.
func erodeAt(in *array.Array, dims []int, coord []int, fp *footprint, borderTrue, invert bool, scratch []int) bool {
	for _, off := range fp.offsets {
		inside := true
		for d := range dims {
			j := coord[d] + off[d]
			if j < 0 || j >= dims[d] {
				inside = false
				break
			}
			scratch[d] = j
		}
		if !inside {
			if !borderTrue {
				return false
			}
			continue
		}
		if !truth(in.Float64At(in.FlatIndex(scratch)), invert) {
			return false
		}
	}
	return true
}

// BinaryErosion erodes a binary input with a structuring element.
// Points outside the array read as borderValue. With centerIsTrue set,
// a false center short-circuits to false without probing neighbors.
// When retain is set the returned worklist holds the coordinates that
// changed, seeding incremental continuation via BinaryErosion2.
func BinaryErosion(input, strct, mask, output *array.Array, borderValue int, origins []int, invert, centerIsTrue, retain bool) (bool, *CoordinateList, error) {
	if err := checkSameShape(input, output); err != nil {
		return false, nil, err
	}
	if mask != nil {
		if err := checkSameShape(input, mask); err != nil {
			return false, nil, err
		}
	}
	if strct.Rank() != input.Rank() {
		return false, nil, errors.Engine("structure rank %d does not match input rank %d", strct.Rank(), input.Rank())
	}
	fp, err := buildFootprint(strct, origins, false)
	if err != nil {
		return false, nil, err
	}

	rank := input.Rank()
	dims := input.Dims()
	// The border value is already expressed in truth space; invert does
	// not flip it.
	borderTrue := borderValue != 0

	var list *CoordinateList
	if retain {
		list = NewCoordinateList(rank)
	}

	changed := false
	coord := make([]int, rank)
	scratch := make([]int, rank)
	for i := 0; i < input.Len(); i++ {
		inTrue := truth(input.Float64At(i), invert)
		if mask != nil && mask.Float64At(i) == 0 {
			if inTrue != invert {
				output.SetFloat64At(i, 1)
			} else {
				output.SetFloat64At(i, 0)
			}
			continue
		}
		input.Coordinate(i, coord)

		var r bool
		if centerIsTrue && !inTrue {
			r = false
		} else {
			r = erodeAt(input, dims, coord, fp, borderTrue, invert, scratch)
		}

		stored := r != invert
		was := input.Float64At(i) != 0
		if stored != was {
			changed = true
			if list != nil {
				list.Push(coord)
			}
		}
		if stored {
			output.SetFloat64At(i, 1)
		} else {
			output.SetFloat64At(i, 0)
		}
	}
	return changed, list, nil
}

// BinaryErosion2 continues an erosion in place for niter further
// iterations (niter < 1 runs to stability), revisiting only the
// neighborhoods of coordinates recorded in the worklist. The list is
// updated to the coordinates changed by the last iteration.
func BinaryErosion2(io, strct, mask *array.Array, niter int, origins []int, invert bool, list *CoordinateList) error {
	if strct.Rank() != io.Rank() {
		return errors.Engine("structure rank %d does not match input rank %d", strct.Rank(), io.Rank())
	}
	if mask != nil {
		if err := checkSameShape(io, mask); err != nil {
			return err
		}
	}
	if list == nil {
		return errors.Engine("nil coordinate worklist")
	}
	rank := io.Rank()
	if list.Rank() != rank {
		return errors.Engine("worklist rank %d does not match input rank %d", list.Rank(), rank)
	}
	fp, err := buildFootprint(strct, origins, false)
	if err != nil {
		return err
	}

	dims := io.Dims()
	cand := make([]int, rank)
	probe := make([]int, rank)
	scratch := make([]int, rank)

	for iter := 0; niter < 1 || iter < niter; iter++ {
		if list.Len() == 0 {
			break
		}
		// A point can only flip if its window covers a coordinate that
		// flipped last round. Out-of-bounds neighbors read as true
		// here: border-driven erosion completed in the initial pass.
		seen := make(map[int]struct{})
		var flips []int
		list.Each(func(coord []int) {
			for _, off := range fp.offsets {
				inside := true
				for d := 0; d < rank; d++ {
					cand[d] = coord[d] - off[d]
					if cand[d] < 0 || cand[d] >= dims[d] {
						inside = false
						break
					}
				}
				if !inside {
					continue
				}
				ci := io.FlatIndex(cand)
				if _, ok := seen[ci]; ok {
					continue
				}
				seen[ci] = struct{}{}
				if mask != nil && mask.Float64At(ci) == 0 {
					continue
				}
				if !truth(io.Float64At(ci), invert) {
					continue
				}
				io.Coordinate(ci, probe)
				if !erodeAt(io, dims, probe, fp, true, invert, scratch) {
					flips = append(flips, ci)
				}
			}
		})

		list.Reset()
		if len(flips) == 0 {
			break
		}
		for _, ci := range flips {
			if invert {
				io.SetFloat64At(ci, 1)
			} else {
				io.SetFloat64At(ci, 0)
			}
			io.Coordinate(ci, scratch)
			list.Push(scratch)
		}
	}
	return nil
}

// Metric selects the distance measure for the brute-force transform.
type Metric int

const (
	MetricEuclidean Metric = iota + 1
	MetricCityBlock
	MetricChessboard
)

// DistanceTransformBruteForce computes, for every foreground element
// of input, the distance to the nearest background element by direct
// comparison against all background elements. sampling weights the
// euclidean metric per axis. distances and features are each optional;
// features receives the coordinates of the nearest background element,
// stacked along its first dimension.
func DistanceTransformBruteForce(input *array.Array, metric Metric, sampling []float64, distances, features *array.Array) error {
	rank := input.Rank()
	if metric != MetricEuclidean && metric != MetricCityBlock && metric != MetricChessboard {
		return errors.Engine("unknown distance metric %d", metric)
	}
	if sampling != nil && len(sampling) != rank {
		return errors.Engine("%d sampling weights for rank %d", len(sampling), rank)
	}
	if distances != nil {
		if err := checkSameShape(input, distances); err != nil {
			return err
		}
	}
	if features != nil {
		if features.Rank() != rank+1 || features.Dim(0) != rank {
			return errors.ShapeMismatch(errors.PhaseKernel, nil,
				"feature array %v does not cover rank %d plus input dims %v",
				features.Dims(), rank, input.Dims())
		}
	}
	if distances == nil && features == nil {
		return errors.Engine("nothing to compute: no distance or feature output")
	}

	total := input.Len()
	var background [][]int
	coord := make([]int, rank)
	for i := 0; i < total; i++ {
		if input.Float64At(i) == 0 {
			c := make([]int, rank)
			input.Coordinate(i, c)
			background = append(background, c)
		}
	}

	for i := 0; i < total; i++ {
		input.Coordinate(i, coord)
		if input.Float64At(i) == 0 {
			if distances != nil {
				distances.SetFloat64At(i, 0)
			}
			if features != nil {
				for d := 0; d < rank; d++ {
					features.SetInt64At(d*total+i, int64(coord[d]))
				}
			}
			continue
		}

		best := math.Inf(1)
		var bestBG []int
		for _, bg := range background {
			var dist float64
			switch metric {
			case MetricEuclidean:
				for d := 0; d < rank; d++ {
					t := float64(coord[d] - bg[d])
					if sampling != nil {
						t *= sampling[d]
					}
					dist += t * t
				}
			case MetricCityBlock:
				for d := 0; d < rank; d++ {
					dist += math.Abs(float64(coord[d] - bg[d]))
				}
			case MetricChessboard:
				for d := 0; d < rank; d++ {
					t := math.Abs(float64(coord[d] - bg[d]))
					if t > dist {
						dist = t
					}
				}
			}
			if dist < best {
				best = dist
				bestBG = bg
			}
		}

		if distances != nil {
			if metric == MetricEuclidean {
				distances.SetFloat64At(i, math.Sqrt(best))
			} else {
				distances.SetFloat64At(i, best)
			}
		}
		if features != nil {
			if bestBG == nil {
				bestBG = coord
			}
			for d := 0; d < rank; d++ {
				features.SetInt64At(d*total+i, int64(bestBG[d]))
			}
		}
	}
	return nil
}

// DistanceTransformOnePass runs a two-sweep chamfer over distances,
// which the caller initializes to zero at background elements and a
// large value elsewhere. strct defines the neighborhood; each sweep
// uses the half of it preceding (then following) the center in scan
// order. features, when given, tracks nearest-background coordinates
// through the propagation.
func DistanceTransformOnePass(strct, distances, features *array.Array) error {
	rank := distances.Rank()
	if strct.Rank() != rank {
		return errors.Engine("structure rank %d does not match rank %d", strct.Rank(), rank)
	}
	if features != nil {
		if features.Rank() != rank+1 || features.Dim(0) != rank {
			return errors.ShapeMismatch(errors.PhaseKernel, nil,
				"feature array %v does not cover rank %d plus dims %v",
				features.Dims(), rank, distances.Dims())
		}
	}
	fp, err := buildFootprint(strct, nil, false)
	if err != nil {
		return err
	}

	dims := distances.Dims()
	total := distances.Len()

	// Flat-order sign of each offset decides which sweep uses it.
	strides := contiguousFlat(dims)
	var forward, backward [][]int
	for _, off := range fp.offsets {
		flat := 0
		for d := 0; d < rank; d++ {
			flat += off[d] * strides[d]
		}
		if flat < 0 {
			forward = append(forward, off)
		} else if flat > 0 {
			backward = append(backward, off)
		}
	}

	if features != nil {
		coord := make([]int, rank)
		for i := 0; i < total; i++ {
			if distances.Float64At(i) == 0 {
				distances.Coordinate(i, coord)
				for d := 0; d < rank; d++ {
					features.SetInt64At(d*total+i, int64(coord[d]))
				}
			}
		}
	}

	sweep := func(start, end, step int, offs [][]int) {
		coord := make([]int, rank)
		ncoord := make([]int, rank)
		for i := start; i != end; i += step {
			cur := distances.Float64At(i)
			distances.Coordinate(i, coord)
			for _, off := range offs {
				inside := true
				for d := 0; d < rank; d++ {
					ncoord[d] = coord[d] + off[d]
					if ncoord[d] < 0 || ncoord[d] >= dims[d] {
						inside = false
						break
					}
				}
				if !inside {
					continue
				}
				ni := distances.FlatIndex(ncoord)
				if c := distances.Float64At(ni) + 1; c < cur {
					cur = c
					distances.SetFloat64At(i, c)
					if features != nil {
						for d := 0; d < rank; d++ {
							features.SetInt64At(d*total+i, features.Int64At(d*total+ni))
						}
					}
				}
			}
		}
	}
	sweep(0, total, 1, forward)
	sweep(total-1, -1, -1, backward)
	return nil
}

func contiguousFlat(dims []int) []int {
	strides := make([]int, len(dims))
	s := 1
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = s
		s *= dims[i]
	}
	return strides
}

// EuclideanFeatureTransform writes, for every element of input, the
// coordinates of the exactly nearest background element under the
// (optionally sampled) euclidean metric. Background elements map to
// themselves.
func EuclideanFeatureTransform(input *array.Array, sampling []float64, features *array.Array) error {
	rank := input.Rank()
	if sampling != nil && len(sampling) != rank {
		return errors.Engine("%d sampling weights for rank %d", len(sampling), rank)
	}
	if features.Rank() != rank+1 || features.Dim(0) != rank {
		return errors.ShapeMismatch(errors.PhaseKernel, nil,
			"feature array %v does not cover rank %d plus input dims %v",
			features.Dims(), rank, input.Dims())
	}
	return DistanceTransformBruteForce(input, MetricEuclidean, sampling, nil, features)
}
