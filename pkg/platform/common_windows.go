//go:build windows

package platform

import (
	"unsafe"

	"github.com/carved4/go-shellforge/pkg/abi"
	"github.com/carved4/go-shellforge/pkg/loader"
)

// kernel32Base is resolved lazily and cached: both the user-mode
// trait's dynamic-load path and its header-init path need it, and a
// second PEB walk per payload lifetime costs nothing but is still
// wasted work.
var kernel32Base uintptr

func resolveKernel32() (uintptr, error) {
	if kernel32Base != 0 {
		return kernel32Base, nil
	}
	base, err := loader.FindModuleUserMode(loader.ByName("kernel32.dll"))
	if err != nil {
		return 0, err
	}
	kernel32Base = base
	return base, nil
}

// loadLibraryDirect and freeLibraryDirect back the dynamic-load /
// dynamic-unload resolution strategy: unlike the header's
// load_module slot, which the entry-point call site invokes directly
// against the frozen offset, a module entry's own Init needs the
// handle back immediately to resolve that module's children, so
// pkg/dispatch calls these through Trait rather than through the
// header.
func loadLibraryDirect(name string) (uintptr, error) {
	base, err := resolveKernel32()
	if err != nil {
		return 0, err
	}
	fn, err := loader.LookupSymbol(base, loader.ByName("LoadLibraryA"))
	if err != nil {
		return 0, err
	}
	cname := append([]byte(name), 0)
	return abi.Call(fn, uintptr(unsafe.Pointer(&cname[0]))), nil
}

func freeLibraryDirect(handle uintptr) error {
	base, err := resolveKernel32()
	if err != nil {
		return err
	}
	fn, err := loader.LookupSymbol(base, loader.ByName("FreeLibrary"))
	if err != nil {
		return err
	}
	abi.Call(fn, handle)
	return nil
}

func invokeFree(freeFn, a0, a1, a2 uintptr) {
	abi.Call(freeFn, a0, a1, a2)
}
