//go:build windows

// Command launcher is a trivial host harness: it reads a flat compiled
// payload image from disk, maps it into executable memory, transfers
// control, and (for the self-cleanup scenario, S5) probes the original
// mapping afterward to report whether the payload freed itself. It has
// no visibility into payload failure beyond the process surviving;
// that's by design — the payload assumes no I/O.
package main

import (
	"flag"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/carved4/go-shellforge/internal/buildlog"
	"github.com/carved4/go-shellforge/pkg/debug"
)

const (
	pageExecuteReadwrite = windows.PAGE_EXECUTE_READWRITE
	// memFreeState is MEM_FREE, the VirtualQuery State value for a
	// region with no committed or reserved pages; x/sys/windows does
	// not name it directly (unlike MEM_COMMIT/MEM_RESERVE/MEM_RELEASE).
	memFreeState = 0x10000
)

func main() {
	path := flag.String("payload", "", "path to a flat-mapped payload image")
	arg1 := flag.Uint64("arg1", 0, "first opaque argument passed to the payload's entry point")
	probeCleanup := flag.Bool("probe-cleanup", false, "after the payload returns, probe whether it freed its own image (scenario S5)")
	flag.Parse()

	if *path == "" {
		buildlog.Log.Fatal().Msg("launcher: -payload is required")
	}

	image, err := os.ReadFile(*path)
	if err != nil {
		buildlog.Log.Fatal().Err(err).Str("path", *path).Msg("launcher: read payload")
	}
	debug.Printf("read %d bytes from %s\n", len(image), *path)

	base, err := mapImage(image)
	if err != nil {
		buildlog.Log.Fatal().Err(err).Msg("launcher: map payload")
	}
	buildlog.Log.Info().Uint64("base", uint64(base)).Msg("mapped payload image")

	run(base, uintptr(*arg1))

	if *probeCleanup {
		reportCleanup(base)
	}
}

// mapImage allocates RWX memory sized to image and copies it in. A
// hardened launcher would allocate RW, copy, then flip to RX via
// VirtualProtect rather than ever holding a writable+executable
// mapping; this harness skips that step since it is orthogonal to the
// import/dispatch machinery under test here.
func mapImage(image []byte) (uintptr, error) {
	base, err := windows.VirtualAlloc(0, uintptr(len(image)), windows.MEM_COMMIT|windows.MEM_RESERVE, pageExecuteReadwrite)
	if err != nil {
		return 0, err
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(base)), len(image))
	copy(dst, image)
	return base, nil
}

// run transfers control to the mapped image's first byte on a fresh
// thread, standing in for a hand-written assembly trampoline kept out
// of scope here. CreateThread's start-routine convention (one
// lpParameter, no second argument) only loosely matches the entry
// contract's two-opaque-argument fastcall ABI, so arg2 is always zero
// here; a real prologue would set up both arguments per the target's
// actual calling convention before jumping in.
func run(base, arg1 uintptr) {
	kernel32 := windows.NewLazySystemDLL("kernel32.dll")
	createThread := kernel32.NewProc("CreateThread")
	waitForSingleObject := kernel32.NewProc("WaitForSingleObject")

	handle, _, errno := createThread.Call(0, 0, base, arg1, 0, 0)
	if handle == 0 {
		buildlog.Log.Fatal().Err(errno).Msg("launcher: CreateThread failed")
	}
	waitForSingleObject.Call(handle, uintptr(windows.INFINITE))
	windows.CloseHandle(windows.Handle(handle))
}

// reportCleanup implements scenario S5: after the payload
// returns, VirtualQuery the original base and report whether it is
// still committed (self-cleanup disabled or absent) or has been freed
// (self-cleanup succeeded).
func reportCleanup(base uintptr) {
	var mbi windows.MemoryBasicInformation
	err := windows.VirtualQuery(base, &mbi, unsafe.Sizeof(mbi))
	if err != nil || mbi.State == memFreeState {
		buildlog.Log.Info().Msg("payload image is no longer mapped: self-cleanup succeeded")
		return
	}
	buildlog.Log.Info().Msg("payload image is still mapped: self-cleanup did not run (or is disabled); freeing it now")
	windows.VirtualFree(base, 0, windows.MEM_RELEASE)
}
