package ndimage

import (
	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/engine"
	"github.com/gridpointai/nd-runtime/errors"
	"github.com/gridpointai/nd-runtime/resource"
)

// BinaryErosion erodes a binary input with a structuring element.
// When retainCoordinates is set, the coordinates changed by this pass
// are stored behind the returned handle for incremental continuation
// via BinaryErosion2; the caller owns the handle and must remove it.
func BinaryErosion(input, structure, mask, output any, borderValue int, origins any, invert, centerIsTrue, retainCoordinates bool) (changed bool, handle resource.Handle, err error) {
	org, err := intSeq(origins)
	if err != nil {
		return false, 0, err
	}
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Bool, array.Standard, "input")
	if err != nil {
		return false, 0, err
	}
	strct, err := s.InputAt(structure, array.Bool, array.Standard, "structure")
	if err != nil {
		return false, 0, err
	}
	msk, err := s.OptionalInput(mask, array.Bool, array.Standard, "mask")
	if err != nil {
		return false, 0, err
	}
	out, err := s.OutputAt(output, array.Bool, array.Standard, "output")
	if err != nil {
		return false, 0, err
	}

	changed, list, err := engine.BinaryErosion(in, strct, msk, out, borderValue, org, invert, centerIsTrue, retainCoordinates)
	if err != nil {
		return false, 0, err
	}
	if list != nil {
		handle, err = table.Create(resource.KindCoordinateList, list)
		if err != nil {
			return false, 0, err
		}
	}
	return changed, handle, nil
}

// BinaryErosion2 continues an erosion in place for niter further
// iterations, revisiting only the neighborhoods recorded behind the
// handle. The handle stays valid afterwards; remove it with
// RemoveHandle when the iteration is finished.
func BinaryErosion2(inputOutput, structure, mask any, niter int, origins any, invert bool, handle resource.Handle) (err error) {
	org, err := intSeq(origins)
	if err != nil {
		return err
	}
	value, err := table.Acquire(handle, resource.KindCoordinateList)
	if err != nil {
		return err
	}
	defer table.EndUse(handle)

	list, ok := value.(*engine.CoordinateList)
	if !ok {
		return errors.InvalidHandle(errors.PhaseHandle, "handle does not hold a coordinate worklist")
	}

	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	io, err := s.InOutAt(inputOutput, array.Bool, array.Standard, "input_output")
	if err != nil {
		return err
	}
	strct, err := s.InputAt(structure, array.Bool, array.Standard, "structure")
	if err != nil {
		return err
	}
	msk, err := s.OptionalInput(mask, array.Bool, array.Standard, "mask")
	if err != nil {
		return err
	}
	return engine.BinaryErosion2(io, strct, msk, niter, org, invert, list)
}

// RemoveHandle releases the state behind an opaque handle. A second
// removal of the same handle fails with an invalid_handle error.
func RemoveHandle(handle resource.Handle) error {
	_, err := table.Remove(handle)
	return err
}

// DistanceTransformBF computes distances (and optionally nearest
// background coordinates) by direct comparison against every
// background element. distances and features are each optional but not
// both.
func DistanceTransformBF(input any, metric Metric, sampling any, distances, features any) (err error) {
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Bool, array.Standard, "input")
	if err != nil {
		return err
	}
	samp, err := floatSeq(s, sampling, "sampling")
	if err != nil {
		return err
	}
	dist, err := s.OptionalOutput(distances, array.Float64, array.Standard, "distances")
	if err != nil {
		return err
	}
	feat, err := s.OptionalOutput(features, array.Int64, array.Standard, "features")
	if err != nil {
		return err
	}
	return engine.DistanceTransformBruteForce(in, metric, samp, dist, feat)
}

// DistanceTransformOP runs the two-sweep chamfer over a distances
// array initialized to zero at background elements and a large value
// elsewhere.
func DistanceTransformOP(structure, distances, features any) (err error) {
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	strct, err := s.InputAt(structure, array.Bool, array.Standard, "structure")
	if err != nil {
		return err
	}
	dist, err := s.InOutAt(distances, array.Float64, array.Standard, "distances")
	if err != nil {
		return err
	}
	feat, err := s.OptionalOutput(features, array.Int64, array.Standard, "features")
	if err != nil {
		return err
	}
	return engine.DistanceTransformOnePass(strct, dist, feat)
}

// EuclideanFeatureTransform writes, for every element, the coordinates
// of the exactly nearest background element.
func EuclideanFeatureTransform(input, sampling, features any) (err error) {
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Bool, array.Standard, "input")
	if err != nil {
		return err
	}
	samp, err := floatSeq(s, sampling, "sampling")
	if err != nil {
		return err
	}
	feat, err := s.OutputAt(features, array.Int64, array.Standard, "features")
	if err != nil {
		return err
	}
	return engine.EuclideanFeatureTransform(in, samp, feat)
}
