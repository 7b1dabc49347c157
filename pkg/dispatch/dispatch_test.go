package dispatch

import (
	"testing"

	"github.com/carved4/go-shellforge/pkg/loader"
)

// fakeTrait is a deterministic, off-Windows stand-in for pkg/platform's
// real traits, letting the resolution/ownership/failure logic in
// table.go be exercised without touching real process memory —
// following the same preference for host-side-testable helper
// functions seen in cmd/main.go.
type fakeTrait struct {
	features Features
	modules map[string]uintptr // by lowercase name
	exports map[uintptr]map[string]uintptr
	loadCalls []string
	unloadCalls []uintptr
	failLoad map[string]bool
	failFind map[string]bool
	dynSymbols map[string]uintptr
}

func newFakeTrait() *fakeTrait {
	return &fakeTrait{
		modules: map[string]uintptr{},
		exports: map[uintptr]map[string]uintptr{},
		failLoad: map[string]bool{},
		failFind: map[string]bool{},
		dynSymbols: map[string]uintptr{},
	}
}

func (f *fakeTrait) Features() Features { return f.features }

func (f *fakeTrait) InitHeader(h *Header, arg1, arg2 uintptr) (uintptr, error) {
	return arg1, nil
}

func (f *fakeTrait) LoadModule(name string) (uintptr, error) {
	f.loadCalls = append(f.loadCalls, name)
	if f.failLoad[name] {
		return 0, &loader.ErrNotFound{Kind: "module", Want: name}
	}
	return f.modules[name], nil
}

func (f *fakeTrait) UnloadModule(handle uintptr) error {
	f.unloadCalls = append(f.unloadCalls, handle)
	return nil
}

func (f *fakeTrait) FindModule(q loader.Query) (uintptr, error) {
	if f.failFind[q.Name] {
		return 0, &loader.ErrNotFound{Kind: "module", Want: q.Name}
	}
	for name, base := range f.modules {
		if loader.MatchesQuery(name, q) {
			return base, nil
		}
	}
	return 0, &loader.ErrNotFound{Kind: "module", Want: q.Name}
}

func (f *fakeTrait) LookupSymbolPE(moduleBase uintptr, q loader.Query) (uintptr, error) {
	if exp, ok := f.exports[moduleBase]; ok {
		for name, ptr := range exp {
			if loader.MatchesQuery(name, q) {
				return ptr, nil
			}
		}
	}
	return 0, &loader.ErrNotFound{Kind: "symbol", Want: q.Name}
}

func (f *fakeTrait) ResolveDynamic(moduleHandle uintptr, name string) (uintptr, error) {
	if ptr, ok := f.dynSymbols[name]; ok {
		return ptr, nil
	}
	return 0, &loader.ErrNotFound{Kind: "symbol", Want: name}
}

func (f *fakeTrait) InvokeFree(freeFn, imageBase uintptr) {}

func TestSuccessfulInitResolvesEveryOrdinalAndUnloadsOnDestroy(t *testing.T) {
	c := Begin()
	c1 := Module(c, "kernel32.dll")
	c2 := Symbol(c1, "Sleep")
	c3 := Module(c2, "user32.dll", DynamicLoad, DynamicUnload)
	c4 := Symbol(c3, "MessageBoxA")
	manifest := End(c4)

	trait := newFakeTrait()
	trait.modules["kernel32.dll"] = 0x1000
	trait.exports[0x1000] = map[string]uintptr{"Sleep": 0x1234}
	trait.modules["user32.dll"] = 0x2000
	trait.exports[0x2000] = map[string]uintptr{"MessageBoxA": 0x5678}

	table := New(manifest)
	if code := table.Init(trait, 0, 0); code != 0 {
		t.Fatalf("Init failed with code %d (ordinal %d)", code, DecodeFailure(code))
	}
	for i := range manifest.Decls {
		if table.Slot(i) == 0 {
			t.Fatalf("ordinal %d unresolved after successful Init", i)
		}
	}
	if table.Slot(1) != 0x1234 {
		t.Fatalf("Sleep slot = %#x, want 0x1234", table.Slot(1))
	}

	table.Destroy(trait, 0, 0)
	if len(trait.unloadCalls) != 1 || trait.unloadCalls[0] != 0x2000 {
		t.Fatalf("expected exactly one unload of 0x2000, got %v", trait.unloadCalls)
	}
}

func TestFailedInitLeavesLaterSlotsUnresolvedAndSkipsUnload(t *testing.T) {
	c := Begin()
	c1 := Module(c, "user32.dll", DynamicLoad, DynamicUnload)
	c2 := Symbol(c1, "MessageBoxA")
	manifest := End(c2)

	trait := newFakeTrait()
	trait.modules["user32.dll"] = 0x2000
	// No export registered for MessageBoxA: LookupSymbolPE fails.

	table := New(manifest)
	code := table.Init(trait, 0, 0)
	if code == 0 {
		t.Fatal("expected Init to fail")
	}
	if got := DecodeFailure(code); got != 1 {
		t.Fatalf("failing ordinal = %d, want 1", got)
	}
	if table.Slot(0) == 0 {
		t.Fatal("module entry before the failure should still be resolved")
	}
	if table.Slot(1) != 0 {
		t.Fatal("failing entry's slot must remain unresolved")
	}

	// Destroy must not be called on a failed Init; this asserts what
	// happens if a caller ignores that and calls it anyway, documenting
	// the "resident module" trade explicitly.
	table.Destroy(trait, 0, 0)
	if len(trait.unloadCalls) != 1 {
		t.Fatalf("Destroy should still try to unload resolved dynamic-load modules if called, got %v", trait.unloadCalls)
	}
}

func TestFlagInheritance(t *testing.T) {
	c := Begin()
	c1 := Module(c, "ntdll.dll", DynamicResolve)
	c2 := Symbol(c1, "RtlGetVersion") // no flags of its own
	c3 := Symbol(c2, "NtClose", StringSymbol)
	manifest := End(c3)

	sym1 := manifest.Decls[1]
	if eff := manifest.EffectiveFlags(sym1); !eff.Has(DynamicResolve) {
		t.Fatalf("expected inherited dynamic-resolve, got %s", eff)
	}

	sym2 := manifest.Decls[2]
	eff2 := manifest.EffectiveFlags(sym2)
	if !eff2.Has(DynamicResolve) {
		t.Fatal("dynamic-resolve should still be inherited alongside symbol's own flags")
	}
	if !eff2.Has(StringSymbol) {
		t.Fatal("symbol-declared string-symbol must not be downgraded by inheritance")
	}
}

func TestDynamicUnloadWithoutDynamicLoadPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for dynamic-unload without dynamic-load")
		}
	}()
	c := Begin()
	Module(c, "user32.dll", DynamicUnload)
}

func TestModuleOnlyFlagOnSymbolPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for module-only flag on a symbol")
		}
	}()
	c := Begin()
	c1 := Module(c, "kernel32.dll")
	Symbol(c1, "Sleep", StringModule)
}

func TestSymbolWithoutModulePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a symbol with no preceding module")
		}
	}()
	Symbol(Begin(), "Sleep")
}

func TestOrdinalsAreDenseAndIncreasing(t *testing.T) {
	c := Begin()
	c1 := Module(c, "a.dll")
	c2 := Symbol(c1, "A")
	c3 := Symbol(c2, "B")
	c4 := Module(c3, "b.dll")
	c5 := Symbol(c4, "C")
	manifest := End(c5)

	for i, d := range manifest.Decls {
		if d.Ordinal != i {
			t.Fatalf("decl %d has ordinal %d", i, d.Ordinal)
		}
	}
}
