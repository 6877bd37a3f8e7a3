package ndimage

import (
	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/engine"
)

// FindObjects returns the bounding box of every label in [1, maxLabel]
// of a labeled array. The result has exactly maxLabel entries (negative
// values clamp to zero); labels that never occur get a nil entry.
func FindObjects(input any, maxLabel int) (regions []Region, err error) {
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Int64, array.Standard, "input")
	if err != nil {
		return nil, err
	}
	return engine.FindObjects(in, maxLabel)
}

// WatershedIFT floods input from marker points, claiming pixels in
// order of increasing value through the given neighborhood structure.
func WatershedIFT(input, markers, structure, output any) (err error) {
	s := array.NewScope()
	defer func() { err = s.Close(err) }()

	in, err := s.InputAt(input, array.Float64, array.Standard, "input")
	if err != nil {
		return err
	}
	mk, err := s.InputAt(markers, array.Int64, array.Standard, "markers")
	if err != nil {
		return err
	}
	strct, err := s.InputAt(structure, array.Bool, array.Standard, "structure")
	if err != nil {
		return err
	}
	out, err := s.OutputAt(output, array.Int64, array.Standard, "output")
	if err != nil {
		return err
	}
	return engine.WatershedIFT(in, mk, strct, out)
}
