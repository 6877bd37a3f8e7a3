// Package ndruntime provides a Go boundary layer between loosely-typed
// host values and an n-dimensional array processing engine.
//
// The library accepts array-like arguments, normalizes them into the
// canonical buffers the engine requires, manages temporary buffers and
// deferred write-back for in-place operations, and provides a callback
// dispatch protocol so user-supplied functions can be invoked
// mid-algorithm by the engine.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	ndruntime/       Root package with the ExtendMode enumeration and the
//	                 normalized callback contracts consumed by the engine
//	├── ndimage/     High-level API: the exposed array operations
//	├── array/       NDArray views, coercion scopes, shadow buffers
//	├── callback/    Callback resolution, catalogues, and trampolines
//	├── resource/    Opaque handle table for engine state that must
//	                 survive across calls
//	├── engine/      Numerical kernels (filters, morphology, transforms)
//	└── errors/      Structured error types for debugging
//
// # Quick Start
//
// Apply a uniform filter to a 2-D grid:
//
//	input, _ := array.FromNested([][]float64{{1, 2, 3}, {4, 5, 6}})
//	output := array.Zeros(array.Float64, input.Dims())
//
//	err := ndimage.UniformFilter1D(input, 3, 0, output,
//	    ndruntime.ExtendReflect, 0, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Every operation is synchronous: it blocks until the engine kernel
// finishes, performs any deferred write-back, and releases temporaries
// on every exit path before returning.
package ndruntime
