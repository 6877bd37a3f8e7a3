// Package callback resolves user-supplied callables into the normalized
// forms the engine invokes synchronously during kernel execution.
//
// # Call Shapes
//
// Three shapes are supported. Line callbacks receive a boundary-extended
// input line and fill an output line. Window callbacks reduce one
// footprint window to a scalar. Map callbacks translate an output-space
// coordinate into the input-space coordinate to sample.
//
// # Resolution
//
// Prepare resolves a callable exactly once; invocations afterwards pay
// no resolution cost. Callables come in two families:
//
// Native callables are Go functions matching an entry of the signature
// catalogue for the shape, optionally wrapped in a Native value to
// attach an opaque context. The catalogue carries one entry per
// supported native integer width (int, plus the sized type matching the
// platform word); resolution tries each entry in order and binds
// directly, with no trampoline and no marshaling overhead.
//
// Host-level callables (HostFunc, *LuaCallable, *WasmCallable) are
// wrapped by a trampoline that, per invocation, copies the native
// buffers into freshly allocated views, appends the fixed extra
// positional arguments, invokes the callable with the extra named
// arguments, and copies results back into the native buffers.
//
// Any failure inside a trampoline aborts the in-progress kernel: the
// engine checks the returned error after every invocation and unwinds
// on the first failure.
//
// Callback.Release frees resolved metadata and callable-held resources;
// the operation layer runs it on every exit path.
package callback
