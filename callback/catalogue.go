package callback

import "strconv"

// Shape identifies the call shape a callable is resolved for.
type Shape uint8

const (
	// ShapeLine: input line in, output line out.
	ShapeLine Shape = iota
	// ShapeWindow: footprint window in, scalar out.
	ShapeWindow
	// ShapeMap: output-space coordinate in, input-space coordinate out.
	ShapeMap
)

func (s Shape) String() string {
	switch s {
	case ShapeLine:
		return "line"
	case ShapeWindow:
		return "window"
	case ShapeMap:
		return "map"
	}
	return "invalid"
}

// Native callable signatures, one per supported integer width. These
// mirror the engine's calling conventions: lengths and ranks arrive as
// explicit integers alongside the buffers, and the final parameter is
// the opaque context bound at Prepare time. A nil error means the
// invocation succeeded.

// LineFuncN processes one extended input line into an output line.
type LineFuncN func(in []float64, ilen int, out []float64, olen int, data any) error

// LineFunc32 is LineFuncN with 32-bit length parameters.
type LineFunc32 func(in []float64, ilen int32, out []float64, olen int32, data any) error

// LineFunc64 is LineFuncN with 64-bit length parameters.
type LineFunc64 func(in []float64, ilen int64, out []float64, olen int64, data any) error

// WindowFuncN reduces one footprint window to *out.
type WindowFuncN func(window []float64, n int, out *float64, data any) error

// WindowFunc32 is WindowFuncN with a 32-bit length parameter.
type WindowFunc32 func(window []float64, n int32, out *float64, data any) error

// WindowFunc64 is WindowFuncN with a 64-bit length parameter.
type WindowFunc64 func(window []float64, n int64, out *float64, data any) error

// MapFuncN fills icoord with the input-space coordinate for ocoord.
type MapFuncN func(ocoord []int, icoord []float64, orank, irank int, data any) error

// MapFunc32 is MapFuncN with 32-bit output coordinates.
type MapFunc32 func(ocoord []int32, icoord []float64, orank, irank int, data any) error

// MapFunc64 is MapFuncN with 64-bit output coordinates.
type MapFunc64 func(ocoord []int64, icoord []float64, orank, irank int, data any) error

// Width distinguishes catalogue entries by the native integer width of
// their length/rank parameters.
type Width uint8

const (
	WidthNative Width = iota
	Width32
	Width64
)

func (w Width) String() string {
	switch w {
	case WidthNative:
		return "int"
	case Width32:
		return "int32"
	case Width64:
		return "int64"
	}
	return "invalid"
}

// supported reports whether a sized width is usable on this platform.
// The native int entry always is; a sized entry only when it matches
// the platform word, so a callable registered under the wrong width is
// rejected at Prepare time instead of misinterpreting lengths.
func (w Width) supported() bool {
	switch w {
	case WidthNative:
		return true
	case Width32:
		return strconv.IntSize == 32
	case Width64:
		return strconv.IntSize == 64
	}
	return false
}

// Entry is one signature in a catalogue.
type Entry struct {
	Width Width
	Name  string
}

// Catalogue lists the native signatures tried, in order, when resolving
// a callable for one shape.
type Catalogue []Entry

// DefaultCatalogue returns the signature catalogue for a shape.
func DefaultCatalogue(shape Shape) Catalogue {
	prefix := shape.String()
	return Catalogue{
		{Width: WidthNative, Name: prefix + "_func(int)"},
		{Width: Width32, Name: prefix + "_func(int32)"},
		{Width: Width64, Name: prefix + "_func(int64)"},
	}
}

func (c Catalogue) names() []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.Name
	}
	return out
}
