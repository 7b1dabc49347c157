//go:build windows

// Command kmod is scenario S4: a kernel-mode build. arg1, supplied by
// the driver-loading harness rather than computed here, is the kernel
// image base; the trait resolves ExFreePool only and rejects
// dynamic-load/dynamic-unload/lookup_symbol at construction, per the
// static kernel-mode restriction.
package main

import (
	"github.com/carved4/go-shellforge/pkg/dispatch"
	"github.com/carved4/go-shellforge/pkg/entrypoint"
	"github.com/carved4/go-shellforge/pkg/platform"
	"github.com/carved4/go-shellforge/pkg/proxy"
)

func main() {
	c := dispatch.Begin()
	c1 := dispatch.Module(c, "ntoskrnl.exe")
	c2 := dispatch.Symbol(c1, "DbgPrint")
	manifest := dispatch.End(c2)

	table := dispatch.New(manifest)
	trait, err := platform.New(platform.ModeKernelMode, dispatch.Features{Free: true, Cleanup: true})
	if err != nil {
		panic(err)
	}

	dbgPrint := proxy.NewFunc[func(uintptr) int32](table.SlotPtr(1))

	var kernelBase uintptr // supplied by the driver-loading harness
	code := entrypoint.Run(table, trait, kernelBase, 0, func(arg1, arg2 uintptr) {
		dbgPrint.Call(0)
	})
	if code != 0 {
		return
	}
	entrypoint.Cleanup(table, trait, kernelBase)
}
