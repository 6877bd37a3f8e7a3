package engine

import (
	"math"
	"testing"

	ndruntime "github.com/gridpointai/nd-runtime"
	"github.com/gridpointai/nd-runtime/array"
)

func floats(t *testing.T, a *array.Array) []float64 {
	t.Helper()
	return a.Float64s()
}

func almostEqual(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func TestCorrelate1DIdentity(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{1, 2, 3, 4, 5})
	out := array.Zeros(array.Float64, in.Dims())
	if err := Correlate1D(in, out, 0, []float64{1}, ndruntime.ExtendNearest, 0, 0); err != nil {
		t.Fatalf("Correlate1D: %v", err)
	}
	if !almostEqual(floats(t, out), []float64{1, 2, 3, 4, 5}, 1e-12) {
		t.Fatalf("got %v", floats(t, out))
	}
}

func TestCorrelate1DAverage(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{0, 0, 3, 0, 0})
	out := array.Zeros(array.Float64, in.Dims())
	w := []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
	if err := Correlate1D(in, out, 0, w, ndruntime.ExtendConstant, 0, 0); err != nil {
		t.Fatalf("Correlate1D: %v", err)
	}
	if !almostEqual(floats(t, out), []float64{0, 1, 1, 1, 0}, 1e-12) {
		t.Fatalf("got %v", floats(t, out))
	}
}

func TestCorrelate1DOrigin(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{1, 0, 0, 0})
	out := array.Zeros(array.Float64, in.Dims())
	// Default centering puts the impulse one step right; origin -1
	// pulls it back.
	if err := Correlate1D(in, out, 0, []float64{1, 0, 0}, ndruntime.ExtendConstant, 0, -1); err != nil {
		t.Fatalf("Correlate1D: %v", err)
	}
	if !almostEqual(floats(t, out), []float64{1, 0, 0, 0}, 1e-12) {
		t.Fatalf("got %v", floats(t, out))
	}
}

func TestCorrelate1DBadOrigin(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{1, 2, 3})
	out := array.Zeros(array.Float64, in.Dims())
	if err := Correlate1D(in, out, 0, []float64{1, 1, 1}, ndruntime.ExtendNearest, 0, 5); err == nil {
		t.Fatal("off-center origin must fail")
	}
}

func TestCorrelate2D(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{
		0, 0, 0,
		0, 1, 0,
		0, 0, 0,
	}, 3, 3)
	out := array.Zeros(array.Float64, in.Dims())
	weights, _ := array.FromFloat64s([]float64{
		1, 1, 1,
		1, 1, 1,
		1, 1, 1,
	}, 3, 3)
	if err := Correlate(in, out, weights, ndruntime.ExtendConstant, 0, nil); err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	want := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1}
	if !almostEqual(floats(t, out), want, 1e-12) {
		t.Fatalf("got %v", floats(t, out))
	}
}

func TestUniformFilter1D(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{2, 8, 0, 4, 1, 9, 9, 0})
	out := array.Zeros(array.Float64, in.Dims())
	if err := UniformFilter1D(in, out, 0, 3, ndruntime.ExtendReflect, 0, 0); err != nil {
		t.Fatalf("UniformFilter1D: %v", err)
	}
	want := []float64{4, 10.0 / 3, 4, 5.0 / 3, 14.0 / 3, 19.0 / 3, 6, 3}
	if !almostEqual(floats(t, out), want, 1e-9) {
		t.Fatalf("got %v, want %v", floats(t, out), want)
	}
}

func TestMinMaxFilter1D(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{5, 1, 4, 2, 3})
	min := array.Zeros(array.Float64, in.Dims())
	max := array.Zeros(array.Float64, in.Dims())
	if err := MinOrMaxFilter1D(in, min, 0, 3, ndruntime.ExtendNearest, 0, 0, true); err != nil {
		t.Fatalf("min: %v", err)
	}
	if err := MinOrMaxFilter1D(in, max, 0, 3, ndruntime.ExtendNearest, 0, 0, false); err != nil {
		t.Fatalf("max: %v", err)
	}
	if !almostEqual(floats(t, min), []float64{1, 1, 1, 2, 2}, 1e-12) {
		t.Fatalf("min = %v", floats(t, min))
	}
	if !almostEqual(floats(t, max), []float64{5, 5, 4, 4, 3}, 1e-12) {
		t.Fatalf("max = %v", floats(t, max))
	}
}

func TestMinOrMaxFilterFootprint(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{
		9, 9, 9,
		9, 1, 9,
		9, 9, 9,
	}, 3, 3)
	out := array.Zeros(array.Float64, in.Dims())
	// Plus-shaped footprint.
	foot, _ := array.FromFloat64s([]float64{
		0, 1, 0,
		1, 1, 1,
		0, 1, 0,
	}, 3, 3)
	if err := MinOrMaxFilter(in, out, foot, nil, ndruntime.ExtendNearest, 0, nil, true); err != nil {
		t.Fatalf("MinOrMaxFilter: %v", err)
	}
	want := []float64{9, 1, 9, 1, 1, 1, 9, 1, 9}
	if !almostEqual(floats(t, out), want, 1e-12) {
		t.Fatalf("got %v", floats(t, out))
	}
}

func TestRankFilterMedian(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{7, 1, 3, 9, 5})
	out := array.Zeros(array.Float64, in.Dims())
	foot, _ := array.FromFloat64s([]float64{1, 1, 1})
	if err := RankFilter(in, out, 1, foot, ndruntime.ExtendNearest, 0, nil); err != nil {
		t.Fatalf("RankFilter: %v", err)
	}
	want := []float64{7, 3, 3, 5, 5}
	if !almostEqual(floats(t, out), want, 1e-12) {
		t.Fatalf("got %v", floats(t, out))
	}
}

func TestRankFilterRankRange(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{1, 2, 3})
	out := array.Zeros(array.Float64, in.Dims())
	foot, _ := array.FromFloat64s([]float64{1, 1, 1})
	if err := RankFilter(in, out, 3, foot, ndruntime.ExtendNearest, 0, nil); err == nil {
		t.Fatal("rank beyond footprint size must fail")
	}
}

func TestGenericFilter1D(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{1, 2, 3, 4})
	out := array.Zeros(array.Float64, in.Dims())
	fn := ndruntime.LineFunc(func(ext, res []float64) error {
		for i := range res {
			res[i] = ext[i] + ext[i+1] + ext[i+2]
		}
		return nil
	})
	if err := GenericFilter1D(in, out, 0, 3, fn, ndruntime.ExtendConstant, 0, 0); err != nil {
		t.Fatalf("GenericFilter1D: %v", err)
	}
	want := []float64{3, 6, 9, 7}
	if !almostEqual(floats(t, out), want, 1e-12) {
		t.Fatalf("got %v", floats(t, out))
	}
}

func TestGenericFilterAbortsOnError(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{1, 2, 3, 4})
	out := array.Zeros(array.Float64, in.Dims())
	foot, _ := array.FromFloat64s([]float64{1, 1, 1})
	calls := 0
	fn := ndruntime.WindowFunc(func(window []float64) (float64, error) {
		calls++
		if calls == 2 {
			return 0, ndErrTest
		}
		return window[0], nil
	})
	if err := GenericFilter(in, out, foot, fn, ndruntime.ExtendNearest, 0, nil); err == nil {
		t.Fatal("callback failure must abort")
	}
	if calls != 2 {
		t.Fatalf("kernel kept calling after failure: %d calls", calls)
	}
}

var ndErrTest = errTest{}

type errTest struct{}

func (errTest) Error() string { return "test failure" }

func TestFilterAxisSecondDim(t *testing.T) {
	in, _ := array.FromFloat64s([]float64{
		1, 2,
		3, 4,
	}, 2, 2)
	out := array.Zeros(array.Float64, in.Dims())
	if err := Correlate1D(in, out, 1, []float64{0.5, 0.5}, ndruntime.ExtendNearest, 0, 0); err != nil {
		t.Fatalf("Correlate1D: %v", err)
	}
	want := []float64{1, 1.5, 3, 3.5}
	if !almostEqual(floats(t, out), want, 1e-12) {
		t.Fatalf("got %v", floats(t, out))
	}
}

func TestLineFiltersEmptyInput(t *testing.T) {
	in := array.Zeros(array.Float64, []int{0})
	out := array.Zeros(array.Float64, []int{0})
	if err := UniformFilter1D(in, out, 0, 3, ndruntime.ExtendReflect, 0, 0); err != nil {
		t.Fatalf("UniformFilter1D: %v", err)
	}

	// A zero-size dimension means zero lines along any axis.
	in2 := array.Zeros(array.Float64, []int{0, 5})
	out2 := array.Zeros(array.Float64, []int{0, 5})
	if err := Correlate1D(in2, out2, 1, []float64{1, 2, 1}, ndruntime.ExtendNearest, 0, 0); err != nil {
		t.Fatalf("Correlate1D: %v", err)
	}
	if err := MinOrMaxFilter1D(in2, out2, 0, 3, ndruntime.ExtendMirror, 0, 0, true); err != nil {
		t.Fatalf("MinOrMaxFilter1D: %v", err)
	}
}
