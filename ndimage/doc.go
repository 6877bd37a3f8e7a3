// Package ndimage exposes the n-dimensional image operations to host
// code. It is the boundary layer: every operation coerces its host
// arguments into canonical array views, converts integer and float
// sequences, resolves callbacks once, invokes the engine kernel, and
// tears everything down with structured errors on every exit path.
//
// Output arguments must be writable arrays; their storage is updated
// through a shadow buffer when the layout does not comply, with the
// write-back skipped if the call fails. State retained across calls
// (erosion worklists) travels as opaque handles validated on every use.
package ndimage
