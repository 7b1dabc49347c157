//go:build windows

package abi

import "syscall"

// call marshals args through syscall.SyscallN, the runtime's own
// stdcall/fastcall trampoline (the same one golang.org/x/sys/windows'
// Proc.Call forwards to for LazyDLL-resolved procedures). Using it
// here rather than a hand-rolled trampoline means a resolved import
// gets exactly the calling-convention handling the Go runtime already
// maintains for every other Windows API boundary in this program,
// including correct shadow-space and stack-argument spill for arg
// counts beyond the four register slots.
//
// fn need not be a real DLL export; SyscallN only requires a valid
// stdcall/fastcall-compatible code address, which is exactly what
// pkg/loader and pkg/platform resolve into a dispatch-table slot.
func call(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := syscall.SyscallN(fn, args...)
	return r1
}
