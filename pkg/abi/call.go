// Package abi provides the single raw-call primitive every resolved
// dispatch-table slot is eventually invoked through: given a function
// address and a flat argument list, execute it under the platform's
// fast-call convention and return its result. This is the payload's
// only "call anything" mechanism, since it links against no import
// table and therefore has no compiler-generated call stubs for
// external functions.
//
// Call itself is a thin, platform-split wrapper (call_windows.go /
// call_other.go); see those files for the actual marshaling.
package abi

// Call invokes the function at fn with args passed in the platform's
// native calling convention (fastcall/x64 or stdcall/x86 on Windows)
// and returns its result truncated to a uintptr. fn is a live, already
// load-delta-corrected address — callers (pkg/proxy, pkg/platform,
// pkg/loader) are responsible for that correction; Call never touches
// pkg/pic itself.
func Call(fn uintptr, args ...uintptr) uintptr {
	return call(fn, args...)
}
