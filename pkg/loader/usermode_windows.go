//go:build windows

package loader

import (
	"unsafe"

	"github.com/carved4/go-shellforge/pkg/obf"
)

// getPEB returns the address of the current process's Process
// Environment Block. Implemented in peb_windows_amd64.s / peb_windows_386.s,
// declared here and defined externally — this is the same kind of
// out-of-scope assembly collaborator the pic package leans on.
//
//go:noescape
//go:nosplit
func getPEB() uintptr

// fastPathNtdll, fastPathKernel32 name the two loader-list entries
// FindModuleUserMode can resolve without a full scan: by the loader's
// own load-order convention the executable occupies the list's first
// entry, ntdll.dll (always loaded before anything else) the second,
// and kernel32.dll the third. FindModuleUserMode takes this path for a
// MatchName query naming either literal, and equally for a MatchHash
// query whose hash equals one of these two names' hash — the fast
// path exists for the query, not for the way it spells the name.
const (
	fastPathNtdll = "ntdll.dll"
	fastPathKernel32 = "kernel32.dll"
)

var (
	fastPathNtdllHash = obf.HashASCII(fastPathNtdll)
	fastPathKernel32Hash = obf.HashASCII(fastPathKernel32)
)

// AllowFastPath controls whether FindModuleUserMode may short-circuit
// to the second/third loader-list entries for ntdll.dll/kernel32.dll.
// It is a package variable rather than a build tag because the
// manifest-driven build (cmd/gendispatch) toggles it per feature flag,
// not per architecture.
var AllowFastPath = true

// currentPEB returns a typed pointer to the process PEB, or nil if the
// loader data is not yet initialized (observed transiently very early
// in process startup).
func currentPEB() *peb {
	addr := getPEB()
	if addr == 0 {
		return nil
	}
	p := (*peb)(unsafe.Pointer(addr))
	if p.Ldr == nil {
		return nil
	}
	return p
}

// FindModuleUserMode walks the InLoadOrderModuleList reachable from the
// PEB and returns the base of the first entry whose basename matches q.
func FindModuleUserMode(q Query) (uintptr, error) {
	if AllowFastPath {
		if base, ok := fastPathLookup(q); ok {
			return base, nil
		}
	}

	p := currentPEB()
	if p == nil {
		return 0, &ErrNotFound{Kind: "module", Want: q.Name}
	}

	head := &p.Ldr.InLoadOrderModuleList
	cur := head.Flink
	for cur != nil && cur != head {
		entry := (*ldrDataTableEntry)(unsafe.Pointer(cur))
		if moduleMatches(entry, q) {
			return entry.DllBase, nil
		}
		cur = cur.Flink
	}
	return 0, &ErrNotFound{Kind: "module", Want: q.Name}
}

// fastPathLookup returns the base of the loader list's second entry
// for ntdll.dll or third entry for kernel32.dll, matching the
// documented Windows loader-order contract that the executable itself
// occupies the first slot. q may name either module by literal or by
// hash; both spellings of the same two names take the same shortcut.
func fastPathLookup(q Query) (uintptr, bool) {
	var index int
	switch q.Mode {
	case MatchName:
		switch {
		case obf.EqualFoldASCII(q.Name, fastPathNtdll):
			index = 1
		case obf.EqualFoldASCII(q.Name, fastPathKernel32):
			index = 2
		default:
			return 0, false
		}
	case MatchHash:
		switch q.Hash {
		case fastPathNtdllHash:
			index = 1
		case fastPathKernel32Hash:
			index = 2
		default:
			return 0, false
		}
	default:
		return 0, false
	}

	p := currentPEB()
	if p == nil {
		return 0, false
	}
	cur := nthModuleFrom(&p.Ldr.InLoadOrderModuleList, index)
	if cur == nil {
		return 0, false
	}
	entry := (*ldrDataTableEntry)(unsafe.Pointer(cur))
	return entry.DllBase, true
}

// nthModuleFrom follows hops Flink links starting at head.Flink (the
// list's first module entry) and returns the node reached, or nil if
// the list is shorter than that or empty. hops=1 lands on the second
// entry, hops=2 on the third, matching fastPathLookup's index values.
// Split out from fastPathLookup so the walk itself is testable against
// a synthetic list without a real PEB.
func nthModuleFrom(head *listEntry, hops int) *listEntry {
	cur := head.Flink
	for i := 0; i < hops && cur != nil && cur != head; i++ {
		cur = cur.Flink
	}
	if cur == nil || cur == head {
		return nil
	}
	return cur
}

func moduleMatches(entry *ldrDataTableEntry, q Query) bool {
	nameLen := int(entry.BaseDllName.Length) / 2
	wide := utf16Slice(entry.BaseDllName.Buffer, nameLen)
	switch q.Mode {
	case MatchName:
		return obf.EqualFoldWideASCII(wide, q.Name)
	case MatchHash:
		return obf.HashWide(wide) == q.Hash
	default:
		return false
	}
}
