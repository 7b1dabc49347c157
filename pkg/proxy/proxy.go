// Package proxy provides the zero-allocation call-site shims that turn
// a resolved dispatch-table slot into something that reads like an
// ordinary Go function or variable at the point of use. A proxy never
// resolves anything itself; it only reads the uintptr a
// pkg/dispatch.Table already placed at a fixed slot index and applies
// pkg/pic's load-delta fixup before use, matching the zero-alloc
// function-pointer wrapper idiom used throughout direct-syscall call
// sites in this style of loader.
package proxy

import (
	"github.com/carved4/go-shellforge/pkg/abi"
	"github.com/carved4/go-shellforge/pkg/pic"
)

// Func wraps a single resolved import as a callable value. T is not
// used for dispatch (Go has no variadic-arity generic call), only to
// carry the import's declared arity/signature at the call site for
// readability in generated code; Call always marshals through
// pkg/abi's flat argument convention.
type Func[T any] struct {
	slot *uintptr
}

// NewFunc builds a Func bound to slot, the resolved-table address for
// one declared import. slot must already be pic.Live-adjusted or must
// itself live in the payload's own image (cmd/gendispatch emits the
// latter: a field inside the same struct as the rest of the table).
func NewFunc[T any](slot *uintptr) Func[T] {
	return Func[T]{slot: slot}
}

// Addr returns the proxy's current resolved address. The load-delta
// fixup applies to slot itself (a build-time address inside the
// payload's own image) so the slot is read through its corrected
// location; the resolved value stored there is already a live OS
// export address and must not be adjusted a second time.
func (f Func[T]) Addr() uintptr {
	return *pic.Live(f.slot)
}

// Call invokes the wrapped import with args, in the platform calling
// convention pkg/abi implements. It panics if the slot has not been
// resolved yet (Addr() == 0), the same failure mode an unresolved
// import would produce if called directly — callers are expected to
// check the dispatch table's Init result before using any proxy.
func (f Func[T]) Call(args ...uintptr) uintptr {
	addr := f.Addr()
	if addr == 0 {
		panic("proxy: Call on an unresolved slot")
	}
	return abi.Call(addr, args...)
}

// Value wraps a resolved slot that names data rather than code (a
// module base, a platform-state word) so call sites can read it
// through the same live-pointer discipline as Func, without accidental
// direct dereference of a build-time address.
type Value[T ~uintptr] struct {
	slot *uintptr
}

// NewValue builds a Value bound to slot.
func NewValue[T ~uintptr](slot *uintptr) Value[T] {
	return Value[T]{slot: slot}
}

// Get returns the slot's current value, read through the slot's own
// load-delta-corrected address (see Func.Addr).
func (v Value[T]) Get() T {
	return T(*pic.Live(v.slot))
}

// Set stores val into the slot, through the same load-delta-corrected
// address Get reads through.
func (v Value[T]) Set(val T) {
	*pic.Live(v.slot) = uintptr(val)
}

// Addr returns the slot's own load-delta-corrected address, for call
// sites that need to pass the value by reference (a platform-state
// word threaded into a further syscall, for instance).
func (v Value[T]) Addr() *uintptr {
	return pic.Live(v.slot)
}

// Bool reports whether the slot currently holds a nonzero value —
// the same "resolved/unresolved" or "set/unset" reading a raw uintptr
// would get from a boolean context in the source DSL this proxies for.
func (v Value[T]) Bool() bool {
	return v.Get() != 0
}
