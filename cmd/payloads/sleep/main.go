//go:build windows

// Command sleep is scenario S1: a single module, a single
// hash-resolved symbol (kernel32.dll!Sleep), no dynamic features at
// all. It is the smallest possible exercise of the full entry
// contract: declare, init, call, destroy.
package main

import (
	"github.com/carved4/go-shellforge/pkg/dispatch"
	"github.com/carved4/go-shellforge/pkg/entrypoint"
	"github.com/carved4/go-shellforge/pkg/platform"
	"github.com/carved4/go-shellforge/pkg/proxy"
)

func main() {
	c := dispatch.Begin()
	c1 := dispatch.Module(c, "kernel32.dll")
	c2 := dispatch.Symbol(c1, "Sleep")
	manifest := dispatch.End(c2)

	table := dispatch.New(manifest)
	trait, err := platform.New(platform.ModeUserMode, dispatch.Features{})
	if err != nil {
		panic(err)
	}

	sleep := proxy.NewFunc[func(uint32)](table.SlotPtr(1))

	code := entrypoint.Run(table, trait, 0, 0, func(arg1, arg2 uintptr) {
		sleep.Call(250)
	})
	if code != 0 {
		panic(code)
	}
}
