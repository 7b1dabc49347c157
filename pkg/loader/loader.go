// Package loader implements the PE/loader introspection component: it
// locates already-mapped modules through the process (or kernel)
// module list and resolves symbols by walking a PE export directory,
// without calling LoadLibrary/GetProcAddress and without linking
// against any import table.
package loader

import "github.com/carved4/go-shellforge/pkg/obf"

// MatchMode selects how a module or symbol name is matched: by an
// exact case-insensitive ASCII compare against a literal that is
// present in the binary, or by an FNV-1a hash so the literal itself
// never appears.
type MatchMode int

const (
	// MatchHash compares against a precomputed FNV-1a hash.
	MatchHash MatchMode = iota
	// MatchName compares byte-exact (case-insensitive ASCII) against a
	// literal name.
	MatchName
)

// Query names a module or symbol to resolve, in exactly one of the two
// supported ways.
type Query struct {
	Mode MatchMode
	Name string
	Hash uint32
}

// ByName builds a Query that matches a literal name.
func ByName(name string) Query { return Query{Mode: MatchName, Name: name} }

// ByHash builds a Query that matches a precomputed hash.
func ByHash(hash uint32) Query { return Query{Mode: MatchHash, Hash: hash} }

// maxForwarderNameLen bounds the length of a forwarder's target DLL
// name ("TARGETDLL.FuncName"); resolved as a concrete tunable matching
// MAX_PATH rather than left unbounded — see DESIGN.md, Open Question (a).
const maxForwarderNameLen = 260

// ErrNotFound is returned (wrapped where useful) when a module or
// symbol query fails to resolve. The dispatch table core never
// inspects this value's type — all failures collapse to a
// non-zero ordinal at the Init boundary — but it is useful for the
// build-time manifest validator and for tests exercised off-Windows
// against a fake Resolver.
type ErrNotFound struct {
	Kind string // "module" or "symbol"
	Want string
}

func (e *ErrNotFound) Error() string {
	if e.Want == "" {
		return e.Kind + " not found"
	}
	return e.Kind + " not found: " + e.Want
}

// MatchesQuery reports whether name satisfies q, either by literal
// case-insensitive ASCII compare or by FNV-1a hash. It is the shared
// comparator behind both the user-mode PE export scan and the
// kernel-mode module-list scan, kept here (no unsafe, no build tag) so
// it is directly unit-testable off Windows.
func MatchesQuery(name string, q Query) bool {
	switch q.Mode {
	case MatchName:
		return obf.EqualFoldASCII(name, q.Name)
	case MatchHash:
		return obf.HashASCII(name) == q.Hash
	default:
		return false
	}
}

// Resolver is the platform-agnostic surface pkg/platform binds to a
// concrete provider (PEB walk + PE parse in user mode, system module
// query in kernel mode). Declaring it here, rather than only having
// free functions, is what lets pkg/dispatch's unit tests substitute a
// fake without touching real process memory.
type Resolver interface {
	FindModule(q Query) (base uintptr, err error)
	LookupSymbol(moduleBase uintptr, q Query) (fn uintptr, err error)
}
