package engine

import (
	"testing"

	ndruntime "github.com/gridpointai/nd-runtime"
)

func TestExtendIndex(t *testing.T) {
	cases := []struct {
		mode ndruntime.ExtendMode
		i    int
		want int
	}{
		{ndruntime.ExtendNearest, -2, 0},
		{ndruntime.ExtendNearest, 5, 3},
		{ndruntime.ExtendWrap, -1, 3},
		{ndruntime.ExtendWrap, 4, 0},
		{ndruntime.ExtendWrap, 9, 1},
		{ndruntime.ExtendReflect, -1, 0},
		{ndruntime.ExtendReflect, -2, 1},
		{ndruntime.ExtendReflect, 4, 3},
		{ndruntime.ExtendReflect, 5, 2},
		{ndruntime.ExtendMirror, -1, 1},
		{ndruntime.ExtendMirror, -2, 2},
		{ndruntime.ExtendMirror, 4, 2},
		{ndruntime.ExtendMirror, 5, 1},
		{ndruntime.ExtendConstant, -1, -1},
		{ndruntime.ExtendConstant, 4, -1},
		{ndruntime.ExtendConstant, 2, 2},
	}
	for _, c := range cases {
		if got := extendIndex(c.i, 4, c.mode); got != c.want {
			t.Errorf("%v index %d: got %d, want %d", c.mode, c.i, got, c.want)
		}
	}
}

func TestExtendIndexSingleElement(t *testing.T) {
	for _, mode := range []ndruntime.ExtendMode{
		ndruntime.ExtendNearest, ndruntime.ExtendWrap,
		ndruntime.ExtendReflect, ndruntime.ExtendMirror,
	} {
		if got := extendIndex(7, 1, mode); got != 0 {
			t.Errorf("%v: got %d", mode, got)
		}
	}
	if got := extendIndex(7, 1, ndruntime.ExtendConstant); got != -1 {
		t.Errorf("constant: got %d", got)
	}
}

func TestExtendLine(t *testing.T) {
	src := []float64{1, 2, 3, 4}
	dst := make([]float64, 8)
	extendLine(dst, src, 2, ndruntime.ExtendConstant, 9)
	want := []float64{9, 9, 1, 2, 3, 4, 9, 9}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("got %v, want %v", dst, want)
		}
	}
}

func TestForEachLineCoversAllLines(t *testing.T) {
	dims := []int{2, 3, 4}
	strides := contiguousFlat(dims)
	var bases []int
	err := forEachLine(dims, strides, 1, func(base int) error {
		bases = append(bases, base)
		return nil
	})
	if err != nil {
		t.Fatalf("forEachLine: %v", err)
	}
	// 2*4 lines along the middle axis.
	if len(bases) != 8 {
		t.Fatalf("%d lines", len(bases))
	}
	seen := map[int]bool{}
	for _, b := range bases {
		if seen[b] {
			t.Fatalf("duplicate base %d", b)
		}
		seen[b] = true
	}
}

func TestForEachLineZeroSizeDim(t *testing.T) {
	for _, dims := range [][]int{{0}, {0, 5}, {3, 0, 4}} {
		strides := contiguousFlat(dims)
		calls := 0
		err := forEachLine(dims, strides, 0, func(base int) error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("dims %v: %v", dims, err)
		}
		if calls != 0 {
			t.Fatalf("dims %v: %d calls", dims, calls)
		}
	}
}
