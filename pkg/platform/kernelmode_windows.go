//go:build windows

package platform

import (
	"github.com/carved4/go-shellforge/pkg/abi"
	"github.com/carved4/go-shellforge/pkg/dispatch"
	"github.com/carved4/go-shellforge/pkg/loader"
)

// kernelMode is the stateful trait for driver-context payloads: arg1
// to Init is the kernel image base, carried as
// PlatformState, and dynamic-load/dynamic-unload/lookup_symbol are
// statically forbidden features (there is no LoadLibrary/GetProcAddress
// equivalent to hand out through the header in ring 0).
type kernelMode struct {
	features dispatch.Features
	kernelBase uintptr
}

func newKernelMode(f dispatch.Features) (*kernelMode, error) {
	if f.LoadModule {
		return nil, &UnsupportedFeatureError{Mode: ModeKernelMode, Feature: "dynamic-load"}
	}
	if f.UnloadModule {
		return nil, &UnsupportedFeatureError{Mode: ModeKernelMode, Feature: "dynamic-unload"}
	}
	if f.LookupSymbol {
		return nil, &UnsupportedFeatureError{Mode: ModeKernelMode, Feature: "lookup_symbol"}
	}
	return &kernelMode{features: f}, nil
}

func (k *kernelMode) Features() dispatch.Features { return k.features }

func (k *kernelMode) InitHeader(h *dispatch.Header, arg1, arg2 uintptr) (uintptr, error) {
	k.kernelBase = arg1

	if k.features.Free {
		fn, err := loader.LookupSymbol(k.kernelBase, loader.ByName("ExFreePool"))
		if err != nil {
			return 0, err
		}
		h.Set(dispatch.SlotFree, fn)
	}
	// SlotCleanup: same as user mode, out-of-scope assembly glue —
	// not populated here.

	return k.kernelBase, nil
}

func (k *kernelMode) LoadModule(name string) (uintptr, error) {
	return 0, notSupported("LoadModule", "kernel mode has no dynamic-load equivalent; rejected at trait construction")
}

func (k *kernelMode) UnloadModule(handle uintptr) error {
	return notSupported("UnloadModule", "kernel mode has no dynamic-unload equivalent; rejected at trait construction")
}

func (k *kernelMode) FindModule(q loader.Query) (uintptr, error) {
	return loader.FindModuleKernelMode(k.kernelBase, q)
}

func (k *kernelMode) LookupSymbolPE(moduleBase uintptr, q loader.Query) (uintptr, error) {
	return loader.LookupSymbol(moduleBase, q)
}

func (k *kernelMode) ResolveDynamic(moduleHandle uintptr, name string) (uintptr, error) {
	return 0, notSupported("ResolveDynamic", "kernel mode has no lookup_symbol equivalent; rejected at trait construction")
}

// InvokeFree calls ExFreePool's single-argument form, versus user
// mode's three-argument VirtualFree shape.
func (k *kernelMode) InvokeFree(freeFn, imageBase uintptr) {
	abi.Call(freeFn, imageBase)
}
