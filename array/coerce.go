package array

import (
	"fmt"

	"github.com/gridpointai/nd-runtime/errors"
)

// satisfies reports whether a meets the requirement set and matches the
// requested element type. A view in fully canonical layout is trusted
// for any requirement set without per-flag inspection.
func satisfies(a *Array, req Req, dtype DType) bool {
	typeOK := dtype == Any || a.dtype == dtype
	if a.flags&Canonical == Canonical && req&ReqEnsureCopy == 0 {
		return typeOK
	}
	if a.flags&FlagNativeOrder == 0 && req&ReqNativeOrder != 0 {
		return false
	}
	if a.flags&FlagAligned == 0 && req&ReqAligned != 0 {
		return false
	}
	if a.flags&FlagContiguous == 0 && req&ReqContiguous != 0 {
		return false
	}
	if a.flags&FlagWritable == 0 && req&ReqWritable != 0 {
		return false
	}
	if req&ReqEnsureCopy != 0 {
		return false
	}
	return typeOK
}

// shadow links an owned substitute buffer to the origin view it stands
// in for. Write-back and flag restoration happen at scope close.
type shadow struct {
	buf             *Array
	origin          *Array
	writeback       bool
	restoreWritable bool
}

// Scope owns every temporary created while coercing the arguments of one
// engine call. Close must run on every exit path of that call.
type Scope struct {
	shadows []*shadow
	closed  bool
}

// NewScope creates an empty coercion scope.
func NewScope() *Scope {
	return &Scope{}
}

// asArray normalizes a host value into an *Array without copying when
// the value already is one.
func asArray(value any, path string) (*Array, error) {
	switch v := value.(type) {
	case *Array:
		if v == nil {
			return nil, errors.TypeConversion(errors.PhaseCoerce, []string{path}, "(*array.Array)(nil)", "any")
		}
		return v, nil
	case nil:
		return nil, errors.TypeConversion(errors.PhaseCoerce, []string{path}, "nil", "any")
	default:
		a, err := FromNested(value)
		if err != nil {
			if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
				e.Path = []string{path}
			}
			return nil, err
		}
		return a, nil
	}
}

// Input coerces value into a read-only borrow of canonical storage,
// copying only when the element type or layout does not comply.
func (s *Scope) Input(value any, dtype DType, req Req) (*Array, error) {
	return s.input(value, dtype, req, "input")
}

// InputAt is Input with an explicit argument name for error paths.
func (s *Scope) InputAt(value any, dtype DType, req Req, path string) (*Array, error) {
	return s.input(value, dtype, req, path)
}

// OptionalInput accepts nil and yields a nil view.
func (s *Scope) OptionalInput(value any, dtype DType, req Req, path string) (*Array, error) {
	if value == nil {
		return nil, nil
	}
	if a, ok := value.(*Array); ok && a == nil {
		return nil, nil
	}
	return s.input(value, dtype, req, path)
}

func (s *Scope) input(value any, dtype DType, req Req, path string) (*Array, error) {
	a, err := asArray(value, path)
	if err != nil {
		return nil, err
	}
	if satisfies(a, req, dtype) {
		return a, nil
	}
	buf, err := a.Clone(dtype)
	if err != nil {
		return nil, err
	}
	buf.base = a
	return buf, nil
}

// Output coerces value into a writable destination view. The source must
// already be writable. When the layout or element type does not comply,
// an uninitialized shadow buffer aliased to the destination is returned,
// a write-back is scheduled for scope close, and the destination loses
// write permission until the write-back completes.
func (s *Scope) Output(value any, dtype DType, req Req) (*Array, error) {
	return s.output(value, dtype, req, "output")
}

// OutputAt is Output with an explicit argument name for error paths.
func (s *Scope) OutputAt(value any, dtype DType, req Req, path string) (*Array, error) {
	return s.output(value, dtype, req, path)
}

// OptionalOutput accepts nil and yields a nil view.
func (s *Scope) OptionalOutput(value any, dtype DType, req Req, path string) (*Array, error) {
	if value == nil {
		return nil, nil
	}
	if a, ok := value.(*Array); ok && a == nil {
		return nil, nil
	}
	return s.output(value, dtype, req, path)
}

func (s *Scope) output(value any, dtype DType, req Req, path string) (*Array, error) {
	a, ok := value.(*Array)
	if !ok || a == nil {
		return nil, errors.New(errors.PhaseCoerce, errors.KindNotWritable).
			Path(path).
			GoType(fmt.Sprintf("%T", value)).
			Detail("only writable arrays work for output").
			Build()
	}
	if !a.Writable() {
		return nil, errors.NotWritable(errors.PhaseCoerce, []string{path})
	}
	if satisfies(a, req, dtype) {
		return a, nil
	}
	buf, err := New(pickDType(dtype, a), a.dims)
	if err != nil {
		return nil, err
	}
	buf.base = a
	a.ClearFlag(FlagWritable)
	s.shadows = append(s.shadows, &shadow{
		buf:             buf,
		origin:          a,
		writeback:       true,
		restoreWritable: true,
	})
	return buf, nil
}

// InOut coerces value for combined input/output use. A fully compliant
// source is returned directly: no copy is made and no write-back is
// scheduled, so the engine mutates the caller's storage in place. A
// non-compliant source is copied into a shadow buffer whose final
// contents are copied back at scope close.
//
// The caller must not touch the source while the owning call is in
// flight; operations are single-threaded per call.
func (s *Scope) InOut(value any, dtype DType, req Req) (*Array, error) {
	return s.InOutAt(value, dtype, req, "input_output")
}

// InOutAt is InOut with an explicit argument name for error paths.
func (s *Scope) InOutAt(value any, dtype DType, req Req, path string) (*Array, error) {
	a, ok := value.(*Array)
	if !ok || a == nil {
		return nil, errors.New(errors.PhaseCoerce, errors.KindNotWritable).
			Path(path).
			GoType(fmt.Sprintf("%T", value)).
			Detail("in/out argument must be a writable array").
			Build()
	}
	if !a.Writable() {
		// Guard against non-writable but otherwise compliant sources.
		return nil, errors.NotWritable(errors.PhaseCoerce, []string{path})
	}
	if satisfies(a, req, dtype) {
		return a, nil
	}
	buf, err := a.Clone(pickDType(dtype, a))
	if err != nil {
		return nil, err
	}
	buf.base = a
	a.ClearFlag(FlagWritable)
	s.shadows = append(s.shadows, &shadow{
		buf:             buf,
		origin:          a,
		writeback:       true,
		restoreWritable: true,
	})
	return buf, nil
}

func pickDType(requested DType, origin *Array) DType {
	if requested == Any {
		return origin.dtype
	}
	return requested
}

// Close finalizes the scope. It is passed the first error of the owning
// call: on nil, every scheduled write-back runs in creation order; on
// failure, shadows are released without write-back so the caller never
// observes a partial mutation. Write permission revoked from origins is
// restored on both paths. Close is idempotent; the returned error is
// callErr unless a write-back itself fails.
func (s *Scope) Close(callErr error) error {
	if s.closed {
		return callErr
	}
	s.closed = true
	for _, sh := range s.shadows {
		if sh.restoreWritable {
			sh.origin.SetFlag(FlagWritable)
		}
		if callErr == nil && sh.writeback {
			if err := sh.origin.CopyFrom(sh.buf); err != nil {
				callErr = errors.Wrap(errors.PhaseWriteback, errors.KindShapeMismatch,
					err, "shadow write-back failed")
			}
		}
		sh.buf.base = nil
	}
	s.shadows = nil
	return callErr
}
