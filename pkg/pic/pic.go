// Package pic implements the position-independence discipline the
// payload needs on 32-bit targets: every image-resident address baked
// into an instruction stream at build time is wrong once the payload
// is copied to an arbitrary base, so all such addresses must be
// corrected through a runtime-computed load delta before use.
//
// On 64-bit targets, instruction-relative addressing removes the need
// for this fixup entirely; Live is the identity function there (see
// pic_amd64.go). The linker must be configured to suppress the
// relocation section for the invariant this package relies on
// (compile-time &x - &y == runtime &x - &y) to hold; that configuration
// lives with the payload's build, not with this package.
package pic

import "unsafe"

// Delta returns the payload's load delta: the difference between the
// runtime address of pcAddr's own call site and its compile-time
// address. It is constant for the lifetime of the payload and is
// computed once, on first use, then cached.
func Delta() uintptr {
	if deltaOverride != nil {
		return *deltaOverride
	}
	return delta()
}

// deltaOverride lets tests inject a nonzero load delta on
// architectures where the real fixup is a no-op (amd64), so callers of
// Live/LiveAddr can be exercised the way they behave on 386 without
// 386 hardware. Set only through SetDeltaForTest.
var deltaOverride *uintptr

// SetDeltaForTest overrides Delta's return value until the returned
// restore func is called. Test-only; production code never calls this.
func SetDeltaForTest(d uintptr) (restore func()) {
	deltaOverride = &d
	return func() { deltaOverride = nil }
}

// Live returns the runtime-correct address of p, a pointer to any
// datum resident in the payload's image, given only its compile-time
// address. On amd64 this is the identity function. On 386 it applies
// the cached load delta.
func Live[T any](p *T) *T {
	if d := Delta(); d != 0 {
		return (*T)(unsafe.Pointer(uintptr(unsafe.Pointer(p)) + d))
	}
	return p
}

// LiveAddr is the untyped analogue of Live, for callers already
// working in uintptr space and adjusting an address that is not
// reachable as a typed *T (raw header offset arithmetic).
func LiveAddr(p uintptr) uintptr {
	return p + Delta()
}
