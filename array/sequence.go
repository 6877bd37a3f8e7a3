package array

import (
	"fmt"
	"math"
	"reflect"

	"github.com/gridpointai/nd-runtime/errors"
)

// ToIntSlice converts a host sequence of integers into an owned []int.
// The result always copies: the engine requires contiguous native-width
// storage that outlives the call, and the caller releases it by letting
// it go out of scope after the call completes.
//
// Accepted forms: []int, []int64, []int32, integral-valued []float64,
// a single integer, or an integer-typed *Array. Anything else fails
// with a type conversion error.
func ToIntSlice(value any) ([]int, error) {
	switch v := value.(type) {
	case nil:
		return nil, errors.TypeConversion(errors.PhaseSequence, nil, "nil", "int")
	case []int:
		out := make([]int, len(v))
		copy(out, v)
		return out, nil
	case []int64:
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, nil
	case []int32:
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, nil
	case []float64:
		out := make([]int, len(v))
		for i, x := range v {
			if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
				return nil, errors.New(errors.PhaseSequence, errors.KindTypeConversion).
					GoType("[]float64").
					Value(x).
					Detail("element %d is not integral", i).
					Build()
			}
			out[i] = int(x)
		}
		return out, nil
	case int:
		return []int{v}, nil
	case int64:
		return []int{int(v)}, nil
	case *Array:
		if v == nil {
			return nil, errors.TypeConversion(errors.PhaseSequence, nil, "(*array.Array)(nil)", "int")
		}
		if !v.DType().IsInteger() {
			return nil, errors.New(errors.PhaseSequence, errors.KindTypeConversion).
				DType(v.DType().String()).
				Detail("sequence array must have an integer element type").
				Build()
		}
		out := make([]int, v.Len())
		for i := range out {
			out[i] = int(v.Int64At(i))
		}
		return out, nil
	default:
		return nil, errors.New(errors.PhaseSequence, errors.KindTypeConversion).
			GoType(fmt.Sprintf("%T", value)).
			Detail("not an integer sequence (kind %v)", reflect.ValueOf(value).Kind()).
			Build()
	}
}
