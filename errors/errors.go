package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCoerce    Phase = "coerce"    // array coercion / view construction
	PhaseSequence  Phase = "sequence"  // integer sequence conversion
	PhaseCallback  Phase = "callback"  // callback resolution and trampolines
	PhaseKernel    Phase = "kernel"    // engine kernel execution
	PhaseHandle    Phase = "handle"    // opaque state handle lifecycle
	PhaseWriteback Phase = "writeback" // shadow buffer write-back
)

// Kind categorizes the error
type Kind string

const (
	KindTypeConversion Kind = "type_conversion"
	KindNotWritable    Kind = "not_writable"
	KindAllocation     Kind = "allocation"
	KindInvalidHandle  Kind = "invalid_handle"
	KindCallback       Kind = "callback"
	KindEngine         Kind = "engine"
	KindShapeMismatch  Kind = "shape_mismatch"
	KindInvalidInput   Kind = "invalid_input"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	DType  string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.DType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.DType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", dtype ")
			b.WriteString(e.DType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("dtype ")
			b.WriteString(e.DType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.DType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the argument path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// DType sets the array element type name
func (b *Builder) DType(t string) *Builder {
	b.err.DType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeConversion creates a type conversion error
func TypeConversion(phase Phase, path []string, goType, dtype string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeConversion,
		Path:   path,
		GoType: goType,
		DType:  dtype,
	}
}

// NotWritable creates a not-writable error for output or in/out arguments
func NotWritable(phase Phase, path []string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotWritable,
		Path:   path,
		Detail: "argument must be a writable array",
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, elems int, dtype string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		DType:  dtype,
		Detail: fmt.Sprintf("failed to allocate %d elements", elems),
	}
}

// InvalidHandle creates an invalid handle error
func InvalidHandle(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidHandle,
		Detail: detail,
	}
}

// Callback creates a callback failure error
func Callback(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseCallback,
		Kind:   KindCallback,
		Detail: detail,
		Cause:  cause,
	}
}

// NoSignature creates a callback resolution failure listing the catalogue
func NoSignature(goType string, tried []string) *Error {
	return &Error{
		Phase:  PhaseCallback,
		Kind:   KindCallback,
		GoType: goType,
		Detail: fmt.Sprintf("no matching signature in catalogue (tried %s)", strings.Join(tried, ", ")),
	}
}

// Engine creates a kernel-internal failure error
func Engine(detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseKernel,
		Kind:   KindEngine,
		Detail: detail,
	}
}

// ShapeMismatch creates a shape mismatch error
func ShapeMismatch(phase Phase, path []string, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindShapeMismatch,
		Path:   path,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
