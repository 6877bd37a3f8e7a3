package ndimage

import (
	stderrors "errors"
	"testing"

	"github.com/gridpointai/nd-runtime/array"
	nderr "github.com/gridpointai/nd-runtime/errors"
)

func squareInput(t *testing.T) *array.Array {
	t.Helper()
	a, err := array.FromFloat64s([]float64{
		0, 0, 0, 0, 0, 0, 0,
		0, 1, 1, 1, 1, 1, 0,
		0, 1, 1, 1, 1, 1, 0,
		0, 1, 1, 1, 1, 1, 0,
		0, 1, 1, 1, 1, 1, 0,
		0, 1, 1, 1, 1, 1, 0,
		0, 0, 0, 0, 0, 0, 0,
	}, 7, 7)
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	return a
}

var crossStruct = [][]int{
	{0, 1, 0},
	{1, 1, 1},
	{0, 1, 0},
}

func TestBinaryErosionOp(t *testing.T) {
	out := array.Zeros(array.Bool, []int{7, 7})
	changed, handle, err := BinaryErosion(squareInput(t), crossStruct, nil, out, 0, nil, false, false, false)
	if err != nil {
		t.Fatalf("BinaryErosion: %v", err)
	}
	if !changed {
		t.Fatal("erosion must report change")
	}
	if handle != 0 {
		t.Fatal("no handle requested")
	}
	// 5x5 block erodes to 3x3.
	count := 0
	for i := 0; i < out.Len(); i++ {
		if out.Float64At(i) != 0 {
			count++
		}
	}
	if count != 9 {
		t.Fatalf("%d foreground elements after one pass", count)
	}
}

func TestBinaryErosionHandleLifecycle(t *testing.T) {
	io := array.Zeros(array.Bool, []int{7, 7})
	changed, handle, err := BinaryErosion(squareInput(t), crossStruct, nil, io, 0, nil, false, false, true)
	if err != nil {
		t.Fatalf("BinaryErosion: %v", err)
	}
	if !changed || handle == 0 {
		t.Fatal("retention must yield a handle")
	}

	if err := BinaryErosion2(io, crossStruct, nil, 1, nil, false, handle); err != nil {
		t.Fatalf("BinaryErosion2: %v", err)
	}
	count := 0
	for i := 0; i < io.Len(); i++ {
		if io.Float64At(i) != 0 {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("%d foreground elements after two passes", count)
	}

	if err := RemoveHandle(handle); err != nil {
		t.Fatalf("RemoveHandle: %v", err)
	}
	// Double release is detected, not corrupting.
	err = RemoveHandle(handle)
	if !stderrors.Is(err, &nderr.Error{Phase: nderr.PhaseHandle, Kind: nderr.KindInvalidHandle}) {
		t.Fatalf("expected invalid_handle, got %v", err)
	}
	// A released handle no longer drives iteration.
	if err := BinaryErosion2(io, crossStruct, nil, 1, nil, false, handle); err == nil {
		t.Fatal("released handle must be rejected")
	}
}

func TestBinaryErosion2ForeignHandle(t *testing.T) {
	io := array.Zeros(array.Bool, []int{3, 3})
	err := BinaryErosion2(io, crossStruct, nil, 1, nil, false, 0xdeadbeef)
	if !stderrors.Is(err, &nderr.Error{Phase: nderr.PhaseHandle, Kind: nderr.KindInvalidHandle}) {
		t.Fatalf("expected invalid_handle, got %v", err)
	}
}

func TestEuclideanFeatureTransformOp(t *testing.T) {
	features := array.Zeros(array.Int64, []int{1, 3})
	if err := EuclideanFeatureTransform([]int{0, 1, 1}, nil, features); err != nil {
		t.Fatalf("EuclideanFeatureTransform: %v", err)
	}
	for i := 0; i < 3; i++ {
		if features.Int64At(i) != 0 {
			t.Fatalf("feature %d = %d", i, features.Int64At(i))
		}
	}
}

func TestDistanceTransformOPOp(t *testing.T) {
	dist, _ := array.FromFloat64s([]float64{0, 1e9, 1e9, 1e9})
	if err := DistanceTransformOP([]int{1, 1, 1}, dist, nil); err != nil {
		t.Fatalf("DistanceTransformOP: %v", err)
	}
	want := []float64{0, 1, 2, 3}
	for i, v := range dist.Float64s() {
		if v != want[i] {
			t.Fatalf("got %v", dist.Float64s())
		}
	}
}
