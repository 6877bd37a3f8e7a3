package engine

import (
	"math"
	"testing"

	ndruntime "github.com/gridpointai/nd-runtime"
	"github.com/gridpointai/nd-runtime/array"
)

func TestSplineWeightsSumToOne(t *testing.T) {
	for order := 0; order <= 5; order++ {
		w := make([]float64, order+1)
		for _, x := range []float64{0, 0.25, 1.5, 3.7, -0.3} {
			splineWeights(order, x, w)
			sum := 0.0
			for _, v := range w {
				sum += v
			}
			if math.Abs(sum-1) > 1e-12 {
				t.Errorf("order %d at %v: weights sum to %v", order, x, sum)
			}
		}
	}
}

func TestSplineWeightsLinear(t *testing.T) {
	w := make([]float64, 2)
	start := splineWeights(1, 2.25, w)
	if start != 2 {
		t.Fatalf("start = %d", start)
	}
	if math.Abs(w[0]-0.75) > 1e-12 || math.Abs(w[1]-0.25) > 1e-12 {
		t.Fatalf("w = %v", w)
	}
}

func TestSplineFilterRoundTrip(t *testing.T) {
	// Filtering then interpolating at the sample points reproduces the
	// original values.
	vals := []float64{1, 4, 2, 8, 5, 7, 3, 6}
	for order := 2; order <= 5; order++ {
		in, _ := array.FromFloat64s(vals)
		coeffs := array.Zeros(array.Float64, in.Dims())
		if err := SplineFilter1D(in, coeffs, order, 0); err != nil {
			t.Fatalf("order %d: %v", order, err)
		}
		for i := range vals {
			got := interpolateAt(coeffs, []float64{float64(i)}, order, ndruntime.ExtendMirror, 0)
			if math.Abs(got-vals[i]) > 1e-6 {
				t.Fatalf("order %d at %d: got %v, want %v", order, i, got, vals[i])
			}
		}
	}
}

func TestGeometricTransformIdentityMatrix(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{1, 2, 3, 4}, 2, 2)
	out := array.Zeros(array.Float64, in.Dims())
	matrix := []float64{1, 0, 0, 1}
	if err := GeometricTransform(in, out, nil, nil, matrix, nil, 1, ndruntime.ExtendNearest, 0); err != nil {
		t.Fatalf("GeometricTransform: %v", err)
	}
	if !almostEqual(floats(t, out), []float64{1, 2, 3, 4}, 1e-12) {
		t.Fatalf("got %v", floats(t, out))
	}
}

func TestGeometricTransformMapCallback(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{10, 20, 30, 40})
	out := array.Zeros(array.Float64, in.Dims())
	// Reverse the line.
	fn := ndruntime.MapFunc(func(ocoord []int, icoord []float64) error {
		icoord[0] = float64(3 - ocoord[0])
		return nil
	})
	if err := GeometricTransform(in, out, fn, nil, nil, nil, 0, ndruntime.ExtendNearest, 0); err != nil {
		t.Fatalf("GeometricTransform: %v", err)
	}
	if !almostEqual(floats(t, out), []float64{40, 30, 20, 10}, 1e-12) {
		t.Fatalf("got %v", floats(t, out))
	}
}

func TestGeometricTransformCoordinateArray(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{10, 20, 30})
	out := array.Zeros(array.Float64, []int{3})
	coords, _ := array.FromFloat64s([]float64{2, 0, 1}, 1, 3)
	if err := GeometricTransform(in, out, nil, coords, nil, nil, 0, ndruntime.ExtendNearest, 0); err != nil {
		t.Fatalf("GeometricTransform: %v", err)
	}
	if !almostEqual(floats(t, out), []float64{30, 10, 20}, 1e-12) {
		t.Fatalf("got %v", floats(t, out))
	}
}

func TestGeometricTransformSourceCount(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{1, 2})
	out := array.Zeros(array.Float64, in.Dims())
	if err := GeometricTransform(in, out, nil, nil, nil, nil, 1, ndruntime.ExtendNearest, 0); err == nil {
		t.Fatal("no coordinate source must fail")
	}
	fn := ndruntime.MapFunc(func(o []int, i []float64) error { return nil })
	if err := GeometricTransform(in, out, fn, nil, []float64{1}, nil, 1, ndruntime.ExtendNearest, 0); err == nil {
		t.Fatal("two coordinate sources must fail")
	}
}

func TestZoomShiftLinear(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{0, 10, 20, 30})
	out := array.Zeros(array.Float64, []int{7})
	// Upsample by two: output grid steps half an input cell.
	if err := ZoomShift(in, out, []float64{0.5}, nil, 1, ndruntime.ExtendNearest, 0); err != nil {
		t.Fatalf("ZoomShift: %v", err)
	}
	want := []float64{0, 5, 10, 15, 20, 25, 30}
	if !almostEqual(floats(t, out), want, 1e-12) {
		t.Fatalf("got %v", floats(t, out))
	}
}

func TestZoomShiftShiftOnly(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{1, 2, 3, 4})
	out := array.Zeros(array.Float64, in.Dims())
	if err := ZoomShift(in, out, nil, []float64{1}, 0, ndruntime.ExtendConstant, -1); err != nil {
		t.Fatalf("ZoomShift: %v", err)
	}
	if !almostEqual(floats(t, out), []float64{2, 3, 4, -1}, 1e-12) {
		t.Fatalf("got %v", floats(t, out))
	}
}

func TestZoomShiftBadOrder(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{1, 2})
	out := array.Zeros(array.Float64, in.Dims())
	if err := ZoomShift(in, out, nil, nil, 7, ndruntime.ExtendNearest, 0); err == nil {
		t.Fatal("order beyond five must fail")
	}
}
