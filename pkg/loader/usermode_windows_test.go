//go:build windows

package loader

import (
	"testing"

	"github.com/carved4/go-shellforge/pkg/obf"
)

// buildModuleChain links three listEntry nodes into a circular list
// rooted at head, the same shape as InLoadOrderModuleList, and returns
// the head plus the three module entries in list order.
func buildModuleChain() (head *listEntry, first, second, third *listEntry) {
	head = &listEntry{}
	first = &listEntry{}
	second = &listEntry{}
	third = &listEntry{}

	head.Flink, first.Blink = first, head
	first.Flink, second.Blink = second, first
	second.Flink, third.Blink = third, second
	third.Flink, head.Blink = head, third

	return head, first, second, third
}

func TestNthModuleFromMatchesFastPathIndices(t *testing.T) {
	head, _, second, third := buildModuleChain()

	// fastPathNtdll uses index=1 and must land on the second loader-list entry.
	if got := nthModuleFrom(head, 1); got != second {
		t.Fatalf("nthModuleFrom(head, 1) = %p, want second entry %p", got, second)
	}
	// fastPathKernel32 uses index=2 and must land on the third loader-list entry.
	if got := nthModuleFrom(head, 2); got != third {
		t.Fatalf("nthModuleFrom(head, 2) = %p, want third entry %p", got, third)
	}
}

func TestNthModuleFromOutOfRange(t *testing.T) {
	head, _, _, _ := buildModuleChain()
	if got := nthModuleFrom(head, 5); got != nil {
		t.Fatalf("nthModuleFrom(head, 5) = %p, want nil for an out-of-range hop count", got)
	}
}

// TestFastPathMatchesSlowPathOnRealPEB cross-checks the fast path
// against the same process's real loader list, for both the
// string-mode and hash-mode spellings of each query: fastPathLookup
// and a full FindModuleUserMode scan must resolve kernel32.dll/ntdll.dll
// to the same base address. This is the case that would have caught
// the swapped fast-path indices, since the swap resolves each name to
// the other module's base.
func TestFastPathMatchesSlowPathOnRealPEB(t *testing.T) {
	for _, name := range []string{"kernel32.dll", "ntdll.dll"} {
		for _, q := range []Query{ByName(name), ByHash(obf.HashASCII(name))} {
			fast, ok := fastPathLookup(q)
			if !ok {
				t.Fatalf("fastPathLookup(%+v) did not resolve on this process", q)
			}

			AllowFastPath = false
			slow, err := FindModuleUserMode(ByName(name))
			AllowFastPath = true
			if err != nil {
				t.Fatalf("slow-path FindModuleUserMode(%q): %v", name, err)
			}

			if fast != slow {
				t.Fatalf("fastPathLookup(%+v) = %#x, want slow-path result %#x", q, fast, slow)
			}
		}
	}
}
