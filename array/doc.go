// Package array provides the n-dimensional array views and coercion
// machinery that connect loosely-typed host values to the engine.
//
// # Views and Roles
//
// Engine kernels consume canonical buffers: contiguous, aligned,
// native-byte-order storage of a known element type. Callers rarely hand
// us that. A Scope coerces each argument according to its role:
//
//	scope := array.NewScope()
//	defer func() { err = scope.Close(err) }()
//
//	in, err := scope.Input(value, array.Float64, array.Standard)
//	out, err := scope.Output(dst, array.Any, array.Standard)
//	io, err := scope.InOut(buf, array.Any, array.Standard)
//
// Input returns a read borrow, copying only when the source's type or
// layout does not comply. Output returns the destination itself when it
// already complies; otherwise it allocates a shadow buffer aliased to
// the destination, schedules a write-back, and revokes the destination's
// write permission until the write-back completes. InOut behaves like
// Output but seeds the shadow with the source's current contents.
//
// # Scope Discipline
//
// Scope.Close runs on every exit path of the owning call. On success it
// performs all scheduled write-backs in creation order and restores
// revoked write permissions; on failure it releases every shadow without
// write-back, so caller-visible state is never left partially mutated.
package array
