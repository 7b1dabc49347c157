// Package entrypoint implements the Go-level analogue of the entry
// contract: the assembly prologue's job of obtaining a live
// dispatch-table pointer, running init, running the user body only on
// success, running destroy, and optionally tail-calling self-cleanup.
// The actual prologue/epilogue and cleanup stub are hand-written
// assembly collaborators kept out of this repo's design scope; this
// package is what a generated entry function's Go body would look
// like if it could be expressed directly instead of through
// cmd/gendispatch's assembly emission.
package entrypoint

import (
	"github.com/carved4/go-shellforge/pkg/dispatch"
	"github.com/carved4/go-shellforge/pkg/pic"
)

// Body is the user payload code the entry contract calls between init
// and destroy, only when init succeeds.
type Body func(arg1, arg2 uintptr)

// Run implements the fixed sequence for `entry(arg1, arg2)`: obtain a
// live pointer to table via pic.Live, call init, on zero result call
// body, call destroy, return the init result. Destroy is skipped when
// init fails — dynamically-loaded modules resolved before the failing
// entry are deliberately left resident.
func Run(table *dispatch.Table, trait dispatch.Trait, arg1, arg2 uintptr, body Body) uint32 {
	live := pic.Live(table)

	code := live.Init(trait, arg1, arg2)
	if code != 0 {
		return code
	}

	body(arg1, arg2)

	live.Destroy(trait, arg1, arg2)
	return 0
}

// Cleanup implements the self-cleanup protocol: when the cleanup
// feature is enabled, after Run returns, tail-call the
// resolved free slot against imageBase with the platform's argument
// shape (VirtualFree's three-argument MEM_RELEASE form in user mode,
// ExFreePool's one-argument form in kernel mode — Trait.InvokeFree
// hides that difference). Callers must not touch table or any proxy
// bound to it after Cleanup returns; on the user-mode path the real
// assembly epilogue returns control to the original caller's preserved
// return address instead of returning here at all.
func Cleanup(table *dispatch.Table, trait dispatch.Trait, imageBase uintptr) {
	live := pic.Live(table)
	if !live.Header.Features.Cleanup {
		return
	}
	freeFn := live.Header.Get(dispatch.SlotFree)
	if freeFn == 0 {
		return
	}
	trait.InvokeFree(freeFn, imageBase)
}
