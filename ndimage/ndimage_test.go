package ndimage

import (
	stderrors "errors"
	"testing"

	ndruntime "github.com/gridpointai/nd-runtime"
	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/callback"
	nderr "github.com/gridpointai/nd-runtime/errors"
)

func TestCorrelate1DNestedInput(t *testing.T) {
	out := array.Zeros(array.Float64, []int{4})
	err := Correlate1D([]float64{1, 2, 3, 4}, out, 0, []float64{1}, ndruntime.ExtendNearest, 0, 0)
	if err != nil {
		t.Fatalf("Correlate1D: %v", err)
	}
	want := []float64{1, 2, 3, 4}
	for i, v := range out.Float64s() {
		if v != want[i] {
			t.Fatalf("got %v", out.Float64s())
		}
	}
}

func TestCorrelate1DOutputWriteback(t *testing.T) {
	// An integer output array forces a shadow; results are written back
	// converted when the call succeeds.
	out := array.Zeros(array.Int32, []int{3})
	err := Correlate1D([]float64{1, 2, 3}, out, 0, []float64{2}, ndruntime.ExtendNearest, 0, 0)
	if err != nil {
		t.Fatalf("Correlate1D: %v", err)
	}
	if !out.Writable() {
		t.Fatal("write permission not restored")
	}
	for i, want := range []int64{2, 4, 6} {
		if out.Int64At(i) != want {
			t.Fatalf("element %d = %d, want %d", i, out.Int64At(i), want)
		}
	}
}

func TestCorrelate1DRejectsNonArrayOutput(t *testing.T) {
	err := Correlate1D([]float64{1}, []float64{0}, 0, []float64{1}, ndruntime.ExtendNearest, 0, 0)
	if !stderrors.Is(err, &nderr.Error{Phase: nderr.PhaseCoerce, Kind: nderr.KindNotWritable}) {
		t.Fatalf("expected not_writable, got %v", err)
	}
}

func TestBadModeRejected(t *testing.T) {
	out := array.Zeros(array.Float64, []int{1})
	err := Correlate1D([]float64{1}, out, 0, []float64{1}, ndruntime.ExtendMode(42), 0, 0)
	if !stderrors.Is(err, &nderr.Error{Phase: nderr.PhaseCoerce, Kind: nderr.KindInvalidInput}) {
		t.Fatalf("expected invalid_input, got %v", err)
	}
}

func TestFailedCallSkipsWriteback(t *testing.T) {
	out := array.Zeros(array.Int32, []int{3})
	out.SetInt64At(0, 7)
	// Off-center origin fails in the kernel; the shadow must be
	// discarded without touching the destination.
	err := Correlate1D([]float64{1, 2, 3}, out, 0, []float64{1, 1, 1}, ndruntime.ExtendNearest, 0, 9)
	if err == nil {
		t.Fatal("expected kernel failure")
	}
	if out.Int64At(0) != 7 {
		t.Fatal("failed call leaked into the destination")
	}
	if !out.Writable() {
		t.Fatal("write permission not restored after failure")
	}
}

func TestGenericFilterHostExtras(t *testing.T) {
	out := array.Zeros(array.Float64, []int{3})
	fn := callback.HostFunc(func(args []any, kwargs map[string]any) (any, error) {
		win := args[0].([]float64)
		offset := args[1].(float64)
		sum := 0.0
		for _, v := range win {
			sum += v
		}
		return sum + offset, nil
	})
	err := GenericFilter([]float64{1, 2, 3}, out, fn, []float64{1, 1, 1},
		ndruntime.ExtendConstant, 0, nil, &callback.Options{ExtraArgs: []any{100.0}})
	if err != nil {
		t.Fatalf("GenericFilter: %v", err)
	}
	want := []float64{103, 106, 105}
	for i, v := range out.Float64s() {
		if v != want[i] {
			t.Fatalf("got %v, want %v", out.Float64s(), want)
		}
	}
}

func TestGenericFilter1DLua(t *testing.T) {
	lc, err := callback.LoadLuaCallable(`
		function double(line, olen)
			local out = {}
			for i = 1, olen do out[i] = line[i + 1] * 2 end
			return out
		end
	`, "double")
	if err != nil {
		t.Fatalf("LoadLuaCallable: %v", err)
	}
	out := array.Zeros(array.Float64, []int{3})
	err = GenericFilter1D([]float64{1, 2, 3}, out, lc, 0, 3, ndruntime.ExtendNearest, 0, 0, nil)
	if err != nil {
		t.Fatalf("GenericFilter1D: %v", err)
	}
	want := []float64{2, 4, 6}
	for i, v := range out.Float64s() {
		if v != want[i] {
			t.Fatalf("got %v, want %v", out.Float64s(), want)
		}
	}
}

func TestZoomShiftOp(t *testing.T) {
	out := array.Zeros(array.Float64, []int{3})
	err := ZoomShift([]float64{0, 10, 20, 30}, out, []float64{1}, []float64{1}, 1, ndruntime.ExtendNearest, 0)
	if err != nil {
		t.Fatalf("ZoomShift: %v", err)
	}
	want := []float64{10, 20, 30}
	for i, v := range out.Float64s() {
		if v != want[i] {
			t.Fatalf("got %v, want %v", out.Float64s(), want)
		}
	}
}

func TestFindObjectsExample(t *testing.T) {
	labeled := [][]int{{0, 1, 1}, {0, 0, 2}}

	regions, err := FindObjects(labeled, 2)
	if err != nil {
		t.Fatalf("FindObjects: %v", err)
	}
	want := []Region{
		{{Start: 0, Stop: 1}, {Start: 1, Stop: 3}},
		{{Start: 1, Stop: 2}, {Start: 2, Stop: 3}},
	}
	if len(regions) != 2 {
		t.Fatalf("%d regions", len(regions))
	}
	for i := range want {
		for d := range want[i] {
			if regions[i][d] != want[i][d] {
				t.Fatalf("label %d: got %v, want %v", i+1, regions[i], want[i])
			}
		}
	}

	regions, err = FindObjects(labeled, 3)
	if err != nil {
		t.Fatalf("FindObjects: %v", err)
	}
	if len(regions) != 3 || regions[2] != nil {
		t.Fatalf("label 3 must be absent, got %v", regions)
	}
}

func TestWatershedIFTOp(t *testing.T) {
	input := [][]float64{
		{0, 9, 0},
		{0, 9, 0},
	}
	markers := [][]int{
		{1, 0, 2},
		{0, 0, 0},
	}
	strct := [][]int{
		{0, 1, 0},
		{1, 1, 1},
		{0, 1, 0},
	}
	out := array.Zeros(array.Int64, []int{2, 3})
	if err := WatershedIFT(input, markers, strct, out); err != nil {
		t.Fatalf("WatershedIFT: %v", err)
	}
	if out.Int64At(0) != 1 || out.Int64At(3) != 1 {
		t.Fatalf("left column not claimed by marker 1: %v", out)
	}
	if out.Int64At(2) != 2 || out.Int64At(5) != 2 {
		t.Fatalf("right column not claimed by marker 2: %v", out)
	}
}

func TestDistanceTransformBFOp(t *testing.T) {
	dist := array.Zeros(array.Float64, []int{3})
	err := DistanceTransformBF([]int{0, 1, 1}, MetricCityBlock, nil, dist, nil)
	if err != nil {
		t.Fatalf("DistanceTransformBF: %v", err)
	}
	want := []float64{0, 1, 2}
	for i, v := range dist.Float64s() {
		if v != want[i] {
			t.Fatalf("got %v", dist.Float64s())
		}
	}
}

func TestDistanceTransformBFNoOutputs(t *testing.T) {
	if err := DistanceTransformBF([]int{0, 1}, MetricEuclidean, nil, nil, nil); err == nil {
		t.Fatal("no outputs must fail")
	}
}
