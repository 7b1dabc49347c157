//go:build windows

// Command defwindowproc is scenario S3: a symbol declared
// with string-symbol resolution whose PE export entry is itself a
// forwarded export (kernel32.dll!HeapAlloc forwards to
// ntdll.dll!RtlAllocateHeap on modern Windows), exercising
// pkg/loader's forwarder chase transparently underneath a normal
// symbol declaration.
package main

import (
	"github.com/carved4/go-shellforge/pkg/dispatch"
	"github.com/carved4/go-shellforge/pkg/entrypoint"
	"github.com/carved4/go-shellforge/pkg/platform"
	"github.com/carved4/go-shellforge/pkg/proxy"
)

func main() {
	c := dispatch.Begin()
	c1 := dispatch.Module(c, "kernel32.dll", dispatch.StringSymbol)
	c2 := dispatch.Symbol(c1, "GetProcessHeap")
	c3 := dispatch.Symbol(c2, "HeapAlloc")
	manifest := dispatch.End(c3)

	table := dispatch.New(manifest)
	trait, err := platform.New(platform.ModeUserMode, dispatch.Features{})
	if err != nil {
		panic(err)
	}

	getProcessHeap := proxy.NewFunc[func() uintptr](table.SlotPtr(1))
	heapAlloc := proxy.NewFunc[func(uintptr, uint32, uintptr) uintptr](table.SlotPtr(2))

	code := entrypoint.Run(table, trait, 0, 0, func(arg1, arg2 uintptr) {
		heap := getProcessHeap.Call()
		heapAlloc.Call(heap, 0, 64)
	})
	if code != 0 {
		panic(code)
	}
}
