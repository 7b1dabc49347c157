package dispatch

import (
	"testing"
	"unsafe"
)

// wordSize is the compiling architecture's native pointer width, the
// same stride a []uintptr's elements occupy — 4 on 386, 8 on amd64.
const wordSize = int(unsafe.Sizeof(uintptr(0)))

func TestHeaderPacksOnlyEnabledSlotsWithNoGaps(t *testing.T) {
	features := Features{Cleanup: true, LoadModule: true, LookupSymbol: true}
	h := &Header{Features: features}

	h.Set(SlotCleanup, 0x1111)
	h.Set(SlotLoadModule, 0x2222)
	h.Set(SlotLookupSymbol, 0x3333)

	if got := h.Get(SlotFree); got != 0 {
		t.Fatalf("Get(SlotFree) = %#x, want 0 (disabled slot)", got)
	}
	if got := h.Get(SlotUnloadModule); got != 0 {
		t.Fatalf("Get(SlotUnloadModule) = %#x, want 0 (disabled slot)", got)
	}
	if got := h.Get(SlotCleanup); got != 0x1111 {
		t.Fatalf("Get(SlotCleanup) = %#x, want 0x1111", got)
	}
	if got := h.Get(SlotLoadModule); got != 0x2222 {
		t.Fatalf("Get(SlotLoadModule) = %#x, want 0x2222", got)
	}
	if got := h.Get(SlotLookupSymbol); got != 0x3333 {
		t.Fatalf("Get(SlotLookupSymbol) = %#x, want 0x3333", got)
	}

	if got, want := len(h.slots), len(features.Enabled()); got != want {
		t.Fatalf("len(h.slots) = %d, want %d (no gaps for disabled slots)", got, want)
	}
}

// TestHeaderOffsetsMatchFeaturesOffset pins the packed slice's actual
// per-element byte offset against Features.Offset for every enabled
// slot, across a mix of feature sets — the enforceable link between
// Header's real in-memory layout and the offsets Features documents,
// rather than trusting the two to agree by construction.
func TestHeaderOffsetsMatchFeaturesOffset(t *testing.T) {
	sets := []Features{
		{Cleanup: true, Free: true, LoadModule: true, UnloadModule: true, LookupSymbol: true},
		{Free: true, LookupSymbol: true},
		{LoadModule: true},
		{Cleanup: true, UnloadModule: true},
		{},
	}

	for _, features := range sets {
		h := &Header{Features: features}
		for _, s := range features.Enabled() {
			h.Set(s, 0xdead)
		}

		base := uintptr(0)
		if len(h.slots) > 0 {
			base = uintptr(unsafe.Pointer(&h.slots[0]))
		}

		for _, s := range []Slot{SlotCleanup, SlotFree, SlotLoadModule, SlotUnloadModule, SlotLookupSymbol} {
			wantOffset, enabled := features.Offset(s, wordSize)
			if !enabled {
				continue
			}
			i, ok := h.packedIndex(s)
			if !ok {
				t.Fatalf("features=%+v: packedIndex(%s) reported disabled, but Features.Offset reported enabled", features, s)
			}
			gotAddr := uintptr(unsafe.Pointer(&h.slots[i]))
			if got := int(gotAddr - base); got != wantOffset {
				t.Fatalf("features=%+v: slot %s actual offset %d, want %d", features, s, got, wantOffset)
			}
		}

		wantSize := features.Size(wordSize)
		if got := len(h.slots) * wordSize; got != wantSize {
			t.Fatalf("features=%+v: header size %d, want %d", features, got, wantSize)
		}
	}
}

func TestHeaderGetOnUnsetHeaderReturnsZero(t *testing.T) {
	h := &Header{Features: Features{Free: true}}
	if got := h.Get(SlotFree); got != 0 {
		t.Fatalf("Get on a never-Set enabled slot = %#x, want 0", got)
	}
	if got := h.Get(SlotCleanup); got != 0 {
		t.Fatalf("Get(SlotCleanup) on a Features with it disabled = %#x, want 0", got)
	}
}
