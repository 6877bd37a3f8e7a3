// Package errors provides structured error types for the nd-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category). The Error type includes rich context: argument path,
// Go/dtype names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCoerce, errors.KindTypeConversion).
//		Path("input").
//		GoType("string").
//		DType("float64").
//		Detail("cannot convert string to array").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotWritable(errors.PhaseCoerce, []string{"output"})
//	err := errors.Engine("structuring element has no true elements")
//
// All errors implement the standard error interface and support
// errors.Is/As; two *Error values match when Phase and Kind agree.
package errors
