//go:build windows

package platform

import (
	"github.com/carved4/go-shellforge/pkg/dispatch"
	"github.com/carved4/go-shellforge/pkg/loader"
)

const memRelease = 0x8000

// userMode is the trait for ordinary process-mode payloads: header
// init locates kernel32.dll once via the PEB fast path, then resolves
// whichever of VirtualFree, GetProcAddress, LoadLibraryA, FreeLibrary
// its features enable.
type userMode struct {
	features dispatch.Features
}

func newUserMode(f dispatch.Features) *userMode {
	return &userMode{features: f}
}

func (u *userMode) Features() dispatch.Features { return u.features }

func (u *userMode) InitHeader(h *dispatch.Header, arg1, arg2 uintptr) (uintptr, error) {
	base, err := loader.FindModuleUserMode(loader.ByName("kernel32.dll"))
	if err != nil {
		return 0, err
	}

	resolve := func(slot dispatch.Slot, name string) error {
		addr, err := loader.LookupSymbol(base, loader.ByName(name))
		if err != nil {
			return err
		}
		h.Set(slot, addr)
		return nil
	}

	if u.features.Free {
		if err := resolve(dispatch.SlotFree, "VirtualFree"); err != nil {
			return 0, err
		}
	}
	if u.features.LookupSymbol {
		if err := resolve(dispatch.SlotLookupSymbol, "GetProcAddress"); err != nil {
			return 0, err
		}
	}
	if u.features.LoadModule {
		if err := resolve(dispatch.SlotLoadModule, "LoadLibraryA"); err != nil {
			return 0, err
		}
	}
	if u.features.UnloadModule {
		if err := resolve(dispatch.SlotUnloadModule, "FreeLibrary"); err != nil {
			return 0, err
		}
	}
	// SlotCleanup is not populated here: it is the
	// generated assembly epilogue stub itself (an out-of-scope
	// collaborator, like the prologue), not a resolved system API.
	// pkg/entrypoint wires it once the stub's live address is known.

	return 0, nil // user mode carries no platform-state payload
}

func (u *userMode) LoadModule(name string) (uintptr, error) {
	handle, err := loadLibraryDirect(name)
	if err != nil {
		return 0, err
	}
	return handle, nil
}

func (u *userMode) UnloadModule(handle uintptr) error {
	return freeLibraryDirect(handle)
}

func (u *userMode) FindModule(q loader.Query) (uintptr, error) {
	return loader.FindModuleUserMode(q)
}

func (u *userMode) LookupSymbolPE(moduleBase uintptr, q loader.Query) (uintptr, error) {
	return loader.LookupSymbol(moduleBase, q)
}

func (u *userMode) ResolveDynamic(moduleHandle uintptr, name string) (uintptr, error) {
	return 0, notSupported("ResolveDynamic", "wired by the header's lookup_symbol slot at the call site instead")
}

func (u *userMode) InvokeFree(freeFn, imageBase uintptr) {
	invokeFree(freeFn, imageBase, 0, memRelease)
}

func notSupported(op, hint string) error {
	return &unsupportedOpError{op: op, hint: hint}
}

type unsupportedOpError struct {
	op, hint string
}

func (e *unsupportedOpError) Error() string {
	return "platform: " + e.op + " is not resolvable through Trait directly: " + e.hint
}
