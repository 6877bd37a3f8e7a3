// Package resource manages opaque handles to engine-internal state that
// must survive across separate top-level calls.
//
// Incremental algorithms (for example iterated binary erosion) retain a
// pending-coordinate worklist between calls. The engine cannot hand the
// caller a raw pointer to that state: the caller could release it twice,
// resume it from two calls at once, or pass a handle of the wrong kind.
// The Table therefore issues typed tokens carrying a kind tag and a
// generation counter, validated on every use:
//
//	table := resource.NewTable()
//
//	h, err := table.Create(KindCoordinateList, worklist)
//
//	// A later call resumes the state. Acquire enforces the
//	// one-in-flight-holder rule; EndUse releases the claim.
//	v, err := table.Acquire(h, KindCoordinateList)
//	defer table.EndUse(h)
//
//	// Explicit destruction. A second Remove is detected and fails
//	// with an invalid_handle error instead of corrupting memory.
//	_, err = table.Remove(h)
//
// Slot reuse bumps the generation, so a stale handle to a freed slot is
// rejected rather than silently aliasing the slot's new occupant.
// Values implementing Dropper are dropped on Remove and Close.
package resource
