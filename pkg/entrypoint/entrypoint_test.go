package entrypoint

import (
	"testing"

	"github.com/carved4/go-shellforge/pkg/dispatch"
	"github.com/carved4/go-shellforge/pkg/loader"
)

// fakeTrait is a minimal off-Windows stand-in, scoped to what Run and
// Cleanup exercise; pkg/dispatch's own tests cover the resolution
// chain in depth.
type fakeTrait struct {
	features   dispatch.Features
	freeCalled []uintptr
}

func (f *fakeTrait) Features() dispatch.Features { return f.features }
func (f *fakeTrait) InitHeader(h *dispatch.Header, arg1, arg2 uintptr) (uintptr, error) {
	if f.features.Free {
		h.Set(dispatch.SlotFree, 0xf12e)
	}
	return 0, nil
}
func (f *fakeTrait) LoadModule(name string) (uintptr, error)   { return 0x1000, nil }
func (f *fakeTrait) UnloadModule(handle uintptr) error          { return nil }
func (f *fakeTrait) FindModule(q loader.Query) (uintptr, error) { return 0x1000, nil }
func (f *fakeTrait) LookupSymbolPE(base uintptr, q loader.Query) (uintptr, error) {
	return 0x2000, nil
}
func (f *fakeTrait) ResolveDynamic(handle uintptr, name string) (uintptr, error) {
	return 0x3000, nil
}
func (f *fakeTrait) InvokeFree(freeFn, imageBase uintptr) {
	f.freeCalled = append(f.freeCalled, freeFn, imageBase)
}

func TestRunCallsBodyOnlyAfterSuccessfulInit(t *testing.T) {
	c := dispatch.Begin()
	c1 := dispatch.Module(c, "kernel32.dll")
	c2 := dispatch.Symbol(c1, "Sleep")
	manifest := dispatch.End(c2)
	table := dispatch.New(manifest)

	trait := &fakeTrait{}
	called := false
	code := Run(table, trait, 0, 0, func(arg1, arg2 uintptr) { called = true })

	if code != 0 {
		t.Fatalf("Run returned %d, want 0", code)
	}
	if !called {
		t.Fatal("body was not invoked after a successful init")
	}
}

func TestCleanupSkippedWhenFeatureDisabled(t *testing.T) {
	c := dispatch.Begin()
	c1 := dispatch.Module(c, "kernel32.dll")
	manifest := dispatch.End(c1)
	table := dispatch.New(manifest)

	trait := &fakeTrait{features: dispatch.Features{Free: true}}
	table.Init(trait, 0, 0)

	Cleanup(table, trait, 0xbeef0000)
	if len(trait.freeCalled) != 0 {
		t.Fatal("Cleanup must not call InvokeFree when the cleanup feature is disabled")
	}
}

func TestCleanupInvokesFreeWhenEnabled(t *testing.T) {
	c := dispatch.Begin()
	c1 := dispatch.Module(c, "kernel32.dll")
	manifest := dispatch.End(c1)
	table := dispatch.New(manifest)

	trait := &fakeTrait{features: dispatch.Features{Free: true, Cleanup: true}}
	table.Init(trait, 0, 0)

	Cleanup(table, trait, 0xbeef0000)
	if len(trait.freeCalled) != 2 || trait.freeCalled[0] != 0xf12e || trait.freeCalled[1] != 0xbeef0000 {
		t.Fatalf("unexpected InvokeFree calls: %v", trait.freeCalled)
	}
}
