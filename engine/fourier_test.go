package engine

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/gridpointai/nd-runtime/array"
)

func complexArray(t *testing.T, vals []complex128, dims ...int) *array.Array {
	t.Helper()
	if len(dims) == 0 {
		dims = []int{len(vals)}
	}
	a, err := array.New(array.Complex128, dims)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i, v := range vals {
		a.SetComplex128At(i, v)
	}
	return a
}

func TestFourierFilterDCPreserved(t *testing.T) {
	// The zero-frequency component passes through every kernel family
	// unchanged.
	for _, kind := range []FourierKind{FourierGaussian, FourierUniform, FourierEllipsoid} {
		in := complexArray(t, []complex128{5, 1, 2, 1})
		out := complexArray(t, make([]complex128, 4))
		if err := FourierFilter(in, out, []float64{2}, -1, 0, kind); err != nil {
			t.Fatalf("kind %d: %v", kind, err)
		}
		if out.Complex128At(0) != 5 {
			t.Fatalf("kind %d: DC = %v", kind, out.Complex128At(0))
		}
	}
}

func TestFourierGaussianAttenuates(t *testing.T) {
	in := complexArray(t, []complex128{1, 1, 1, 1, 1, 1, 1, 1})
	out := complexArray(t, make([]complex128, 8))
	if err := FourierFilter(in, out, []float64{2}, -1, 0, FourierGaussian); err != nil {
		t.Fatalf("FourierFilter: %v", err)
	}
	// Attenuation grows toward the Nyquist bin and is symmetric.
	prev := 1.0
	for k := 1; k <= 4; k++ {
		m := cmplx.Abs(out.Complex128At(k))
		if m >= prev {
			t.Fatalf("bin %d not attenuated: %v >= %v", k, m, prev)
		}
		prev = m
	}
	if math.Abs(cmplx.Abs(out.Complex128At(3))-cmplx.Abs(out.Complex128At(5))) > 1e-12 {
		t.Fatal("spectrum not symmetric")
	}
}

func TestFourierEllipsoidRankLimit(t *testing.T) {
	in := complexArray(t, make([]complex128, 16), 2, 2, 2, 2)
	out := complexArray(t, make([]complex128, 16), 2, 2, 2, 2)
	err := FourierFilter(in, out, []float64{1, 1, 1, 1}, -1, 0, FourierEllipsoid)
	if err == nil {
		t.Fatal("rank four ellipsoid must fail")
	}
}

func TestFourierShiftPhase(t *testing.T) {
	// Shifting a pure impulse by s multiplies bin k by exp(-2πiks/n).
	n := 8
	vals := make([]complex128, n)
	for i := range vals {
		vals[i] = 1
	}
	in := complexArray(t, vals)
	out := complexArray(t, make([]complex128, n))
	if err := FourierShift(in, out, []float64{1}, -1, 0); err != nil {
		t.Fatalf("FourierShift: %v", err)
	}
	for k := 0; k < n; k++ {
		kk := k
		if kk > n/2 {
			kk -= n
		}
		want := cmplx.Exp(complex(0, -2*math.Pi*float64(kk)/float64(n)))
		if cmplx.Abs(out.Complex128At(k)-want) > 1e-12 {
			t.Fatalf("bin %d: got %v, want %v", k, out.Complex128At(k), want)
		}
	}
}

func TestFourierShiftMagnitudePreserved(t *testing.T) {
	in := complexArray(t, []complex128{3, complex(1, 2), complex(0, -1), 4})
	out := complexArray(t, make([]complex128, 4))
	if err := FourierShift(in, out, []float64{2.5}, -1, 0); err != nil {
		t.Fatalf("FourierShift: %v", err)
	}
	for i := 0; i < 4; i++ {
		if math.Abs(cmplx.Abs(out.Complex128At(i))-cmplx.Abs(in.Complex128At(i))) > 1e-12 {
			t.Fatalf("bin %d magnitude changed", i)
		}
	}
}

func TestFourierParamCount(t *testing.T) {
	in := complexArray(t, make([]complex128, 4), 2, 2)
	out := complexArray(t, make([]complex128, 4), 2, 2)
	if err := FourierFilter(in, out, []float64{1}, -1, 0, FourierGaussian); err == nil {
		t.Fatal("one kernel size for rank two must fail")
	}
	if err := FourierShift(in, out, []float64{1, 2, 3}, -1, 0); err == nil {
		t.Fatal("three shifts for rank two must fail")
	}
}
