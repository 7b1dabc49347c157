// Package dispatch implements the dispatch table core: the compile-time
// declaration DSL (entry.go), the frozen header layout (header.go),
// flag inheritance and static validation (flags.go, manifest.go), and
// the two-phase Init/Destroy runtime this file implements.
package dispatch

import (
	"github.com/carved4/go-shellforge/pkg/loader"
	"github.com/carved4/go-shellforge/pkg/obf"
)

// Trait binds the abstract resolution operations a dispatch table
// needs to a concrete platform (pkg/platform's user-mode or
// kernel-mode implementation). dispatch depends only on this
// interface, never on pkg/platform itself, so platform can freely
// depend on dispatch's types without an import cycle.
type Trait interface {
	// Features reports which header slots this platform populates.
	Features() Features
	// InitHeader populates h's enabled slots and returns any
	// platform-state value (the kernel image base in kernel mode, 0 in
	// user mode) that Table stores alongside the header as the
	// optional platform-state block.
	InitHeader(h *Header, arg1, arg2 uintptr) (platformState uintptr, err error)

	// LoadModule and UnloadModule back the dynamic-load/dynamic-unload
	// resolution strategy.
	LoadModule(name string) (handle uintptr, err error)
	UnloadModule(handle uintptr) error

	// FindModule backs the string-module/hash-module resolution
	// strategy (a borrowed, already-mapped module).
	FindModule(q loader.Query) (base uintptr, err error)

	// LookupSymbolPE backs the string-symbol/hash-symbol resolution
	// strategy: a PE export-directory scan against an already-resolved
	// module base or handle.
	LookupSymbolPE(moduleBase uintptr, q loader.Query) (fn uintptr, err error)

	// ResolveDynamic backs the dynamic-resolve strategy: the header's
	// lookup_symbol slot (a GetProcAddress equivalent), called with
	// the literal name.
	ResolveDynamic(moduleHandle uintptr, name string) (fn uintptr, err error)

	// InvokeFree calls the header's resolved free slot with whatever
	// argument shape the platform needs (VirtualFree's three-argument
	// form in user mode, ExFreePool's single argument in kernel mode),
	// backing the self-cleanup protocol.
	InvokeFree(freeFn, imageBase uintptr)
}

// Table is the payload's single persistent datum: a header, an
// optional platform-state word, and one resolved slot per declared
// import, in declaration order. It is allocated as one contiguous
// object and zero-initialized before Init.
type Table struct {
	Header Header
	PlatformState uintptr

	manifest *Manifest
	slots []uintptr
}

// New allocates a zero-initialized Table for manifest. Manifest must
// already be valid (End() only ever returns a validated Manifest, and
// Manifest.Validate() rejects anything cmd/gendispatch builds by
// hand); New does not re-validate.
func New(manifest *Manifest) *Table {
	return &Table{manifest: manifest, slots: make([]uintptr, len(manifest.Decls))}
}

// Slot returns the resolved pointer stored for the declared import at
// ordinal, or 0 if it has not been resolved yet (before Init reaches
// it, or after a failed Init past the failing entry).
func (t *Table) Slot(ordinal int) uintptr {
	return t.slots[ordinal]
}

// SlotPtr returns the address of the resolved-slot storage itself,
// for pkg/proxy's call-site shims to bind to. Unlike Slot, which reads
// the value at one point in time, a proxy holds this pointer and reads
// through it on every call, which only matters for the entries whose
// resolution can still be pending when the proxy is constructed.
func (t *Table) SlotPtr(ordinal int) *uintptr {
	return &t.slots[ordinal]
}

// encodeFailure turns a failing ordinal into the non-zero identifier
// Init returns. Ordinal 0 is itself a valid ordinal, and 0 is also the
// success sentinel, so the wire value is ordinal+1; DecodeFailure
// undoes this. This convention is this repo's resolution of an
// ordinal/zero overlap left otherwise implicit — see DESIGN.md.
func encodeFailure(ordinal int) uint32 {
	return uint32(ordinal) + 1
}

// DecodeFailure recovers the failing ordinal from a non-zero Init
// result.
func DecodeFailure(code uint32) int {
	return int(code) - 1
}

// errHeaderInit is the reserved non-zero result Init returns when the
// platform trait itself fails to populate the header, before any
// declared import is attempted — this precedes ordinal 0, so it can't
// share the ordinal+1 encoding without colliding at the uint32 wrap
// boundary.
const errHeaderInit uint32 = 0xFFFFFFFF

// Init runs the chained resolution for every declared import against
// trait, in ordinal order: entry N+1's init first delegates to entry N
// (here, simply "resolve in order" since the chain is flattened into
// the Manifest), then performs its own resolution. On the first
// failure it returns a non-zero result identifying the failing
// ordinal and leaves every later slot unresolved; the caller must not
// call Destroy in that case.
func (t *Table) Init(trait Trait, arg1, arg2 uintptr) uint32 {
	t.Header.Features = trait.Features()
	state, err := trait.InitHeader(&t.Header, arg1, arg2)
	if err != nil {
		return errHeaderInit
	}
	t.PlatformState = state

	for _, d := range t.manifest.Decls {
		ptr, err := t.resolveOne(trait, d)
		if err != nil {
			return encodeFailure(d.Ordinal)
		}
		t.slots[d.Ordinal] = ptr
	}
	return 0
}

func (t *Table) resolveOne(trait Trait, d Decl) (uintptr, error) {
	effective := t.manifest.EffectiveFlags(d)

	if d.Kind == KindModule {
		switch {
		case d.Flags.Has(DynamicLoad):
			return trait.LoadModule(d.Name)
		case d.Flags.Has(StringModule):
			return trait.FindModule(loader.ByName(d.Name))
		default:
			return trait.FindModule(loader.ByHash(obf.HashASCII(d.Name)))
		}
	}

	parent := t.slots[d.ParentOrdinal]
	switch {
	case effective.Has(DynamicResolve):
		return trait.ResolveDynamic(parent, d.Name)
	case effective.Has(StringSymbol):
		return trait.LookupSymbolPE(parent, loader.ByName(d.Name))
	default:
		return trait.LookupSymbolPE(parent, loader.ByHash(obf.HashASCII(d.Name)))
	}
}

// Destroy runs teardown in the reverse of declaration order: only
// module entries flagged dynamic-unload own anything to release. It
// must only be called after a fully successful Init (result 0) — a
// failed Init leaves dynamically-loaded modules resident by design;
// Destroy is the caller's responsibility to skip in that case, not
// this method's to guard against, since by the time Destroy runs the
// entry shim has already decided Init succeeded.
func (t *Table) Destroy(trait Trait, arg1, arg2 uintptr) {
	for i := len(t.manifest.Decls) - 1; i >= 0; i-- {
		d := t.manifest.Decls[i]
		if d.Kind == KindModule && d.Flags.Has(DynamicUnload) {
			_ = trait.UnloadModule(t.slots[d.Ordinal])
		}
	}
}
