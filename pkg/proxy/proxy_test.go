//go:build amd64

package proxy

import "testing"

func TestFuncCallInvokesResolvedAddress(t *testing.T) {
	var got []uintptr
	stub := func(args ...uintptr) uintptr {
		got = args
		return 42
	}
	_ = stub // documents the shape abi.Call has; proxy itself can't be
	// redirected to a fake without an abi-level seam, so this test
	// only exercises the parts that don't require a real callable
	// address: Addr() and the unresolved-slot panic.
	_ = got

	var slot uintptr
	f := NewFunc[func(uintptr) uintptr](&slot)
	if f.Addr() != 0 {
		t.Fatalf("Addr() = %#x, want 0 for an unresolved slot", f.Addr())
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected Call on an unresolved slot to panic")
		}
	}()
	f.Call(1, 2, 3)
}

func TestValueGetAppliesNoDeltaOnAmd64(t *testing.T) {
	slot := uintptr(0xdeadbeef)
	v := NewValue[uintptr](&slot)
	if got := v.Get(); got != slot {
		t.Fatalf("Get() = %#x, want %#x", got, slot)
	}
}

func TestValueSetWritesThroughToSlot(t *testing.T) {
	var slot uintptr
	v := NewValue[uintptr](&slot)
	v.Set(0x1122)
	if slot != 0x1122 {
		t.Fatalf("underlying slot = %#x, want 0x1122", slot)
	}
	if got := v.Get(); got != 0x1122 {
		t.Fatalf("Get() = %#x, want 0x1122", got)
	}
}

func TestValueAddrReturnsSlotPointer(t *testing.T) {
	var slot uintptr = 7
	v := NewValue[uintptr](&slot)
	if v.Addr() != &slot {
		t.Fatalf("Addr() = %p, want %p", v.Addr(), &slot)
	}
}

func TestValueBoolReflectsSlotState(t *testing.T) {
	var slot uintptr
	v := NewValue[uintptr](&slot)
	if v.Bool() {
		t.Fatal("Bool() = true for a zero slot")
	}
	v.Set(1)
	if !v.Bool() {
		t.Fatal("Bool() = false after setting a nonzero value")
	}
}
