//go:build windows

//go:generate go run ../../genstrings -manifest strings.toml -out strings_gen.go -package main

// Command messagebox is scenario S2: a dynamically loaded
// and unloaded module (user32.dll) with a hash-resolved symbol
// (MessageBoxA), exercising the dynamic-load/dynamic-unload ownership
// path and the obfuscated-literal codec for the displayed text.
// greetingText/titleText live in strings_gen.go, generated from
// strings.toml by genstrings — the display text never appears as a
// literal anywhere in this package's own source.
package main

import (
	"unsafe"

	"github.com/carved4/go-shellforge/pkg/dispatch"
	"github.com/carved4/go-shellforge/pkg/entrypoint"
	"github.com/carved4/go-shellforge/pkg/platform"
	"github.com/carved4/go-shellforge/pkg/proxy"
)

// addrOf returns a NUL-terminated byte buffer's address as a raw
// argument word, the shape MessageBoxA's lpText/lpCaption parameters
// need. obf.String.Decode already includes the trailing NUL.
func addrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

func main() {
	c := dispatch.Begin()
	c1 := dispatch.Module(c, "user32.dll", dispatch.DynamicLoad, dispatch.DynamicUnload)
	c2 := dispatch.Symbol(c1, "MessageBoxA")
	manifest := dispatch.End(c2)

	table := dispatch.New(manifest)
	trait, err := platform.New(platform.ModeUserMode, dispatch.Features{
		LoadModule: true,
		UnloadModule: true,
	})
	if err != nil {
		panic(err)
	}

	messageBoxA := proxy.NewFunc[func(uintptr, uintptr, uintptr, uint32) int32](table.SlotPtr(1))

	code := entrypoint.Run(table, trait, 0, 0, func(arg1, arg2 uintptr) {
		text := greetingText.Decode()
		title := titleText.Decode()
		messageBoxA.Call(0, addrOf(text), addrOf(title), 0)
	})
	if code != 0 {
		panic(code)
	}
}
