package array

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"github.com/gridpointai/nd-runtime/errors"
)

// Array is an n-dimensional view over flat element storage.
//
// Rank 0 arrays are legal and hold exactly one element. The element
// count is always the product of the dimension sizes. Accessors address
// elements by flat row-major index; canonical (contiguous) layout is
// assumed, which every coercion in this package guarantees.
type Array struct {
	data    []byte
	base    *Array
	dims    []int
	strides []int
	dtype   DType
	flags   Flags
}

// New allocates a zeroed, owned, canonical array.
func New(dtype DType, dims []int) (*Array, error) {
	if dtype == Any {
		dtype = Float64
	}
	n := 1
	for _, d := range dims {
		if d < 0 {
			return nil, errors.InvalidInput(errors.PhaseCoerce, "negative dimension %d", d)
		}
		if d > 0 && n > math.MaxInt/d {
			return nil, errors.AllocationFailed(errors.PhaseCoerce, d, dtype.String())
		}
		n *= d
	}
	a := &Array{
		data:    make([]byte, n*dtype.Size()),
		dims:    append([]int(nil), dims...),
		dtype:   dtype,
		flags:   Canonical | FlagOwned,
		strides: contiguousStrides(dims),
	}
	return a, nil
}

// Zeros is New for callers that cannot produce invalid dimensions.
func Zeros(dtype DType, dims []int) *Array {
	a, err := New(dtype, dims)
	if err != nil {
		panic(err)
	}
	return a
}

func contiguousStrides(dims []int) []int {
	strides := make([]int, len(dims))
	s := 1
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = s
		s *= dims[i]
	}
	return strides
}

// FromFloat64s builds a Float64 array from a flat slice. The contents
// are copied; the resulting array owns its storage.
func FromFloat64s(data []float64, dims ...int) (*Array, error) {
	if len(dims) == 0 {
		dims = []int{len(data)}
	}
	a, err := New(Float64, dims)
	if err != nil {
		return nil, err
	}
	if a.Len() != len(data) {
		return nil, errors.ShapeMismatch(errors.PhaseCoerce, nil,
			"%d elements do not fill dims %v", len(data), dims)
	}
	for i, v := range data {
		a.SetFloat64At(i, v)
	}
	return a, nil
}

// FromInt64s builds an Int64 array from a flat slice.
func FromInt64s(data []int64, dims ...int) (*Array, error) {
	if len(dims) == 0 {
		dims = []int{len(data)}
	}
	a, err := New(Int64, dims)
	if err != nil {
		return nil, err
	}
	if a.Len() != len(data) {
		return nil, errors.ShapeMismatch(errors.PhaseCoerce, nil,
			"%d elements do not fill dims %v", len(data), dims)
	}
	for i, v := range data {
		a.SetInt64At(i, v)
	}
	return a, nil
}

// FromNested converts a host value (a scalar or arbitrarily nested
// slices of numeric values) into an owned canonical array. Integer
// leaves produce Int64, floats Float64, bools Bool, complex Complex128.
// Ragged nesting fails with a type conversion error.
func FromNested(value any) (*Array, error) {
	if value == nil {
		return nil, errors.TypeConversion(errors.PhaseCoerce, nil, "nil", "any")
	}
	var dims []int
	rv := reflect.ValueOf(value)
	for v := rv; v.Kind() == reflect.Slice || v.Kind() == reflect.Array; {
		dims = append(dims, v.Len())
		if v.Len() == 0 {
			break
		}
		v = v.Index(0)
		if v.Kind() == reflect.Interface {
			v = v.Elem()
		}
	}
	dtype, err := leafDType(rv)
	if err != nil {
		return nil, err
	}
	a, err := New(dtype, dims)
	if err != nil {
		return nil, err
	}
	idx := 0
	if err := fillNested(a, rv, dims, 0, &idx); err != nil {
		return nil, err
	}
	return a, nil
}

func leafDType(v reflect.Value) (DType, error) {
	for v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		if v.Len() == 0 {
			return Float64, nil
		}
		v = v.Index(0)
		if v.Kind() == reflect.Interface {
			v = v.Elem()
		}
	}
	switch v.Kind() {
	case reflect.Bool:
		return Bool, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int64, nil
	case reflect.Float32, reflect.Float64:
		return Float64, nil
	case reflect.Complex64, reflect.Complex128:
		return Complex128, nil
	}
	return Any, errors.New(errors.PhaseCoerce, errors.KindTypeConversion).
		GoType(fmt.Sprintf("%v", v.Kind())).
		Detail("unsupported element kind").
		Build()
}

func fillNested(a *Array, v reflect.Value, dims []int, depth int, idx *int) error {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if depth < len(dims) {
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return errors.TypeConversion(errors.PhaseCoerce, nil, v.Type().String(), a.dtype.String())
		}
		if v.Len() != dims[depth] {
			return errors.ShapeMismatch(errors.PhaseCoerce, nil,
				"ragged nesting: expected %d elements at depth %d, found %d",
				dims[depth], depth, v.Len())
		}
		for i := 0; i < v.Len(); i++ {
			if err := fillNested(a, v.Index(i), dims, depth+1, idx); err != nil {
				return err
			}
		}
		return nil
	}
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			a.SetInt64At(*idx, 1)
		} else {
			a.SetInt64At(*idx, 0)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		a.SetInt64At(*idx, v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		a.SetInt64At(*idx, int64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		a.SetFloat64At(*idx, v.Float())
	case reflect.Complex64, reflect.Complex128:
		a.SetComplex128At(*idx, v.Complex())
	default:
		return errors.TypeConversion(errors.PhaseCoerce, nil, v.Type().String(), a.dtype.String())
	}
	*idx++
	return nil
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.dims) }

// Dims returns the dimension sizes. The slice is shared; do not mutate.
func (a *Array) Dims() []int { return a.dims }

// Dim returns the size of one dimension.
func (a *Array) Dim(i int) int { return a.dims[i] }

// Strides returns per-dimension element strides.
func (a *Array) Strides() []int { return a.strides }

// Len returns the total element count.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.dims {
		n *= d
	}
	return n
}

// DType returns the element type tag.
func (a *Array) DType() DType { return a.dtype }

// Flags returns the current layout/access flags.
func (a *Array) Flags() Flags { return a.flags }

// Writable reports whether the view may be written.
func (a *Array) Writable() bool { return a.flags&FlagWritable != 0 }

// Base returns the origin view a shadow buffer aliases, or nil.
func (a *Array) Base() *Array { return a.base }

// ClearFlag removes layout/access flags. Tests use it to fabricate
// non-compliant sources; revoking FlagWritable makes a view read-only.
func (a *Array) ClearFlag(f Flags) { a.flags &^= f }

// SetFlag restores flags cleared earlier.
func (a *Array) SetFlag(f Flags) { a.flags |= f }

// SameStorage reports whether two views share backing bytes.
func (a *Array) SameStorage(b *Array) bool {
	if len(a.data) == 0 || len(b.data) == 0 {
		return false
	}
	return &a.data[0] == &b.data[0]
}

// Float64At reads element i converted to float64.
func (a *Array) Float64At(i int) float64 {
	off := i * a.dtype.Size()
	switch a.dtype {
	case Bool, Uint8:
		return float64(a.data[off])
	case Int16:
		return float64(int16(binary.NativeEndian.Uint16(a.data[off:])))
	case Int32:
		return float64(int32(binary.NativeEndian.Uint32(a.data[off:])))
	case Int64:
		return float64(int64(binary.NativeEndian.Uint64(a.data[off:])))
	case Float32:
		return float64(math.Float32frombits(binary.NativeEndian.Uint32(a.data[off:])))
	case Float64:
		return math.Float64frombits(binary.NativeEndian.Uint64(a.data[off:]))
	case Complex128:
		return math.Float64frombits(binary.NativeEndian.Uint64(a.data[off:]))
	}
	return 0
}

// SetFloat64At writes element i, truncating for integer element types.
func (a *Array) SetFloat64At(i int, v float64) {
	off := i * a.dtype.Size()
	switch a.dtype {
	case Bool:
		if v != 0 {
			a.data[off] = 1
		} else {
			a.data[off] = 0
		}
	case Uint8:
		a.data[off] = uint8(int64(v))
	case Int16:
		binary.NativeEndian.PutUint16(a.data[off:], uint16(int16(v)))
	case Int32:
		binary.NativeEndian.PutUint32(a.data[off:], uint32(int32(v)))
	case Int64:
		binary.NativeEndian.PutUint64(a.data[off:], uint64(int64(v)))
	case Float32:
		binary.NativeEndian.PutUint32(a.data[off:], math.Float32bits(float32(v)))
	case Float64:
		binary.NativeEndian.PutUint64(a.data[off:], math.Float64bits(v))
	case Complex128:
		binary.NativeEndian.PutUint64(a.data[off:], math.Float64bits(v))
		binary.NativeEndian.PutUint64(a.data[off+8:], 0)
	}
}

// Int64At reads element i converted to int64 (floats truncate).
func (a *Array) Int64At(i int) int64 {
	off := i * a.dtype.Size()
	switch a.dtype {
	case Bool, Uint8:
		return int64(a.data[off])
	case Int16:
		return int64(int16(binary.NativeEndian.Uint16(a.data[off:])))
	case Int32:
		return int64(int32(binary.NativeEndian.Uint32(a.data[off:])))
	case Int64:
		return int64(binary.NativeEndian.Uint64(a.data[off:]))
	default:
		return int64(a.Float64At(i))
	}
}

// SetInt64At writes element i from an int64.
func (a *Array) SetInt64At(i int, v int64) {
	switch a.dtype {
	case Bool:
		if v != 0 {
			a.data[i] = 1
		} else {
			a.data[i] = 0
		}
	case Uint8:
		a.data[i] = uint8(v)
	case Int16:
		binary.NativeEndian.PutUint16(a.data[i*2:], uint16(int16(v)))
	case Int32:
		binary.NativeEndian.PutUint32(a.data[i*4:], uint32(int32(v)))
	case Int64:
		binary.NativeEndian.PutUint64(a.data[i*8:], uint64(v))
	default:
		a.SetFloat64At(i, float64(v))
	}
}

// Complex128At reads element i as a complex value; real element types
// yield a zero imaginary part.
func (a *Array) Complex128At(i int) complex128 {
	if a.dtype == Complex128 {
		off := i * 16
		re := math.Float64frombits(binary.NativeEndian.Uint64(a.data[off:]))
		im := math.Float64frombits(binary.NativeEndian.Uint64(a.data[off+8:]))
		return complex(re, im)
	}
	return complex(a.Float64At(i), 0)
}

// SetComplex128At writes element i; real element types keep the real part.
func (a *Array) SetComplex128At(i int, v complex128) {
	if a.dtype == Complex128 {
		off := i * 16
		binary.NativeEndian.PutUint64(a.data[off:], math.Float64bits(real(v)))
		binary.NativeEndian.PutUint64(a.data[off+8:], math.Float64bits(imag(v)))
		return
	}
	a.SetFloat64At(i, real(v))
}

// Float64s copies the contents out as a flat float64 slice.
func (a *Array) Float64s() []float64 {
	out := make([]float64, a.Len())
	for i := range out {
		out[i] = a.Float64At(i)
	}
	return out
}

// CopyFrom copies every element of src, converting element types.
// Shapes must already agree.
func (a *Array) CopyFrom(src *Array) error {
	if a.Len() != src.Len() {
		return errors.ShapeMismatch(errors.PhaseWriteback, nil,
			"cannot copy %d elements into %d", src.Len(), a.Len())
	}
	n := a.Len()
	if a.dtype == src.dtype {
		copy(a.data, src.data[:n*a.dtype.Size()])
		return nil
	}
	switch {
	case a.dtype.IsComplex() || src.dtype.IsComplex():
		for i := 0; i < n; i++ {
			a.SetComplex128At(i, src.Complex128At(i))
		}
	case a.dtype.IsInteger() && src.dtype.IsInteger():
		for i := 0; i < n; i++ {
			a.SetInt64At(i, src.Int64At(i))
		}
	default:
		for i := 0; i < n; i++ {
			a.SetFloat64At(i, src.Float64At(i))
		}
	}
	return nil
}

// Clone returns an owned canonical copy, optionally converting dtype.
func (a *Array) Clone(dtype DType) (*Array, error) {
	if dtype == Any {
		dtype = a.dtype
	}
	out, err := New(dtype, a.dims)
	if err != nil {
		return nil, err
	}
	if err := out.CopyFrom(a); err != nil {
		return nil, err
	}
	return out, nil
}

// FlatIndex converts an n-dimensional coordinate to a flat index.
func (a *Array) FlatIndex(coord []int) int {
	idx := 0
	for i, c := range coord {
		idx += c * a.strides[i]
	}
	return idx
}

// Coordinate fills coord with the n-dimensional position of flat index i.
func (a *Array) Coordinate(i int, coord []int) {
	for d := len(a.dims) - 1; d >= 0; d-- {
		if a.dims[d] > 0 {
			coord[d] = i % a.dims[d]
			i /= a.dims[d]
		} else {
			coord[d] = 0
		}
	}
}

func (a *Array) String() string {
	return fmt.Sprintf("Array(%s, dims=%v, flags=%06b)", a.dtype, a.dims, a.flags)
}
