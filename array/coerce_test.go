package array

import (
	stderrors "errors"
	"testing"

	nderr "github.com/gridpointai/nd-runtime/errors"
)

func mustFloats(t *testing.T, data []float64, dims ...int) *Array {
	t.Helper()
	a, err := FromFloat64s(data, dims...)
	if err != nil {
		t.Fatalf("FromFloat64s: %v", err)
	}
	return a
}

func TestOutputZeroCopyLaw(t *testing.T) {
	// Canonical writable layout must alias identical backing storage.
	a := mustFloats(t, []float64{1, 2, 3, 4}, 2, 2)
	s := NewScope()

	out, err := s.Output(a, Any, Standard)
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if !out.SameStorage(a) {
		t.Fatal("expected zero-copy alias for canonical writable array")
	}
	if err := s.Close(nil); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOutputShadowWriteback(t *testing.T) {
	a := mustFloats(t, []float64{1, 2, 3, 4})
	s := NewScope()

	// Type mismatch forces a shadow.
	out, err := s.Output(a, Int32, Standard)
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if out.SameStorage(a) {
		t.Fatal("expected shadow buffer on dtype mismatch")
	}
	if out.Base() != a {
		t.Fatal("shadow must alias its origin")
	}
	if a.Writable() {
		t.Fatal("origin write permission must be revoked until write-back")
	}

	for i := 0; i < 4; i++ {
		out.SetInt64At(i, int64(10*(i+1)))
	}
	if err := s.Close(nil); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !a.Writable() {
		t.Fatal("write permission not restored after write-back")
	}
	for i := 0; i < 4; i++ {
		if got := a.Float64At(i); got != float64(10*(i+1)) {
			t.Fatalf("write-back element %d = %v", i, got)
		}
	}
}

func TestOutputNotWritable(t *testing.T) {
	a := mustFloats(t, []float64{1, 2})
	a.ClearFlag(FlagWritable)
	s := NewScope()

	_, err := s.Output(a, Any, Standard)
	if !stderrors.Is(err, &nderr.Error{Phase: nderr.PhaseCoerce, Kind: nderr.KindNotWritable}) {
		t.Fatalf("expected not_writable error, got %v", err)
	}
	s.Close(err)
}

func TestInOutCopyBackLaw(t *testing.T) {
	// Non-compliant writable source: identity kernel through the shadow
	// must leave the original equal to the computed output.
	a := mustFloats(t, []float64{5, 6, 7})
	s := NewScope()

	io, err := s.InOut(a, Float64, Standard|ReqEnsureCopy)
	if err != nil {
		t.Fatalf("InOut: %v", err)
	}
	if io.SameStorage(a) {
		t.Fatal("ensure-copy must produce a shadow")
	}
	for i := 0; i < 3; i++ {
		if io.Float64At(i) != a.Float64At(i) {
			t.Fatal("shadow must start as a copy of the source")
		}
	}
	io.SetFloat64At(1, 60)
	if err := s.Close(nil); err != nil {
		t.Fatalf("Close: %v", err)
	}
	want := []float64{5, 60, 7}
	for i, w := range want {
		if got := a.Float64At(i); got != w {
			t.Fatalf("copy-back element %d = %v, want %v", i, got, w)
		}
	}
}

func TestInOutCompliantInPlace(t *testing.T) {
	a := mustFloats(t, []float64{1, 2})
	s := NewScope()

	io, err := s.InOut(a, Any, Standard)
	if err != nil {
		t.Fatalf("InOut: %v", err)
	}
	if !io.SameStorage(a) {
		t.Fatal("compliant in/out source must be returned directly")
	}
	if len(s.shadows) != 0 {
		t.Fatal("no write-back may be scheduled for a direct borrow")
	}
	s.Close(nil)
}

func TestInOutNotWritable(t *testing.T) {
	a := mustFloats(t, []float64{1, 2})
	a.ClearFlag(FlagWritable)
	s := NewScope()

	_, err := s.InOut(a, Any, Standard)
	if !stderrors.Is(err, &nderr.Error{Phase: nderr.PhaseCoerce, Kind: nderr.KindNotWritable}) {
		t.Fatalf("expected not_writable error, got %v", err)
	}
	s.Close(err)
}

func TestInputIdempotent(t *testing.T) {
	a := mustFloats(t, []float64{1, 2, 3})
	s := NewScope()

	v1, err := s.Input(a, Any, Standard)
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	v2, err := s.Input(a, Any, Standard)
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	if !v1.SameStorage(a) || !v2.SameStorage(a) {
		t.Fatal("compliant input must borrow, not copy")
	}
	if v1.DType() != v2.DType() || v1.Len() != v2.Len() {
		t.Fatal("repeated coercion of the same value must yield equal views")
	}
	s.Close(nil)
}

func TestInputConvertsOnTypeMismatch(t *testing.T) {
	a := mustFloats(t, []float64{1.5, 2.5})
	s := NewScope()

	v, err := s.Input(a, Int64, Standard)
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	if v.SameStorage(a) {
		t.Fatal("dtype mismatch must copy")
	}
	if v.Int64At(0) != 1 || v.Int64At(1) != 2 {
		t.Fatalf("converted values wrong: %v %v", v.Int64At(0), v.Int64At(1))
	}
	// Read borrow: source untouched.
	if a.Float64At(0) != 1.5 {
		t.Fatal("input coercion must not mutate the source")
	}
	s.Close(nil)
}

func TestInputFromNested(t *testing.T) {
	s := NewScope()
	v, err := s.Input([][]float64{{1, 2}, {3, 4}}, Any, Standard)
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	if v.Rank() != 2 || v.Dim(0) != 2 || v.Dim(1) != 2 {
		t.Fatalf("unexpected dims %v", v.Dims())
	}
	if v.Float64At(3) != 4 {
		t.Fatalf("element order wrong: %v", v.Float64s())
	}
	s.Close(nil)
}

func TestFailureSkipsWriteback(t *testing.T) {
	a := mustFloats(t, []float64{1, 2, 3})
	s := NewScope()

	out, err := s.Output(a, Int32, Standard)
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	out.SetInt64At(0, 99)

	callErr := nderr.Engine("kernel blew up")
	if got := s.Close(callErr); got != callErr {
		t.Fatalf("Close must propagate the call error, got %v", got)
	}
	if a.Float64At(0) != 1 {
		t.Fatal("failed call must not write back partial results")
	}
	if !a.Writable() {
		t.Fatal("write permission must be restored even on failure")
	}
}

func TestCloseIdempotent(t *testing.T) {
	a := mustFloats(t, []float64{1})
	s := NewScope()
	if _, err := s.Output(a, Int32, Standard); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if err := s.Close(nil); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(nil); err != nil {
		t.Fatalf("second Close must be a no-op, got %v", err)
	}
}

func TestIndependentShadows(t *testing.T) {
	a := mustFloats(t, []float64{1, 2})
	b := mustFloats(t, []float64{3, 4})
	s := NewScope()

	sa, err := s.Output(a, Int32, Standard)
	if err != nil {
		t.Fatalf("Output a: %v", err)
	}
	sb, err := s.Output(b, Int32, Standard)
	if err != nil {
		t.Fatalf("Output b: %v", err)
	}
	if sa.SameStorage(sb) {
		t.Fatal("independent arguments must receive independent shadows")
	}
	s.Close(nil)
}
