//go:build windows

package loader

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"github.com/Binject/debug/pe"
)

// peReaderAt adapts a raw in-memory PE image (addressed by moduleBase)
// to io.ReaderAt so the Binject pe parser can read it without a copy,
// the same technique syscallresolve.GetFunctionAddress uses.
type peReaderAt struct {
	data []byte
}

func (r *peReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(r.data)) {
		return 0, fmt.Errorf("loader: offset %d out of range", off)
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, fmt.Errorf("loader: short read at %d", off)
	}
	return n, nil
}

// sizeOfImage reads PE_HEADER.OptionalHeader.SizeOfImage directly out
// of process memory, needed before the module can be sliced for the
// Binject parser.
func sizeOfImage(moduleBase uintptr) (uint32, error) {
	dos := (*[64]byte)(unsafe.Pointer(moduleBase))
	if dos[0] != 'M' || dos[1] != 'Z' {
		return 0, fmt.Errorf("loader: bad DOS signature at %#x", moduleBase)
	}
	peOff := u32At(moduleBase + 60)
	if peOff == 0 || peOff >= 4096 {
		return 0, fmt.Errorf("loader: implausible PE header offset %#x", peOff)
	}
	sig := (*[4]byte)(unsafe.Pointer(moduleBase + uintptr(peOff)))
	if sig[0] != 'P' || sig[1] != 'E' {
		return 0, fmt.Errorf("loader: bad PE signature at %#x", moduleBase+uintptr(peOff))
	}
	// SizeOfImage sits at offset 56 into the OptionalHeader, which
	// starts 24 bytes after the PE signature (4-byte sig + 20-byte
	// COFF file header), identical on PE32 and PE32+.
	return u32At(moduleBase + uintptr(peOff) + 24 + 56), nil
}

// exportDirectoryRange returns the RVA and size of the module's export
// data directory (data directory index 0), read directly from the
// optional header rather than through the pe package, so
// isForwardedExport can stay a cheap raw-memory check.
func exportDirectoryRange(moduleBase uintptr) (rva, size uint32, err error) {
	peOff := u32At(moduleBase + 60)
	optOff := moduleBase + uintptr(peOff) + 24
	magic := u16At(optOff)
	var dataDirOff uintptr
	switch magic {
	case 0x10b: // PE32
		dataDirOff = optOff + 96
	case 0x20b: // PE32+
		dataDirOff = optOff + 112
	default:
		return 0, 0, fmt.Errorf("loader: unknown optional header magic %#x", magic)
	}
	rva = u32At(dataDirOff)
	size = u32At(dataDirOff + 4)
	return rva, size, nil
}

func isForwardedExport(moduleBase, funcAddr uintptr) bool {
	rva, size, err := exportDirectoryRange(moduleBase)
	if err != nil || rva == 0 || size == 0 {
		return false
	}
	off := uint32(funcAddr - moduleBase)
	return off >= rva && off < rva+size
}

func readForwarderString(funcAddr uintptr) string {
	var b strings.Builder
	for i := 0; i < maxForwarderNameLen; i++ {
		c := *bytePtr(funcAddr + uintptr(i))
		if c == 0 {
			break
		}
		b.WriteByte(c)
	}
	return b.String()
}

// LookupSymbol resolves q against moduleBase's export directory: a
// descending-index scan so the last declared name wins on collision,
// ordinal-array indirection to reach the function RVA, and forwarder
// resolution when the resolved RVA lands back inside the export
// directory itself.
func LookupSymbol(moduleBase uintptr, q Query) (uintptr, error) {
	size, err := sizeOfImage(moduleBase)
	if err != nil {
		return 0, err
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(moduleBase)), size)
	file, err := pe.NewFileFromMemory(&peReaderAt{data: data})
	if err != nil {
		return 0, fmt.Errorf("loader: parse PE at %#x: %w", moduleBase, err)
	}
	defer file.Close()

	exports, err := file.Exports()
	if err != nil {
		return 0, fmt.Errorf("loader: read exports at %#x: %w", moduleBase, err)
	}

	var rva uint32
	found := false
	for i := len(exports) - 1; i >= 0; i-- {
		e := exports[i]
		if e.Name == "" {
			continue
		}
		if MatchesQuery(e.Name, q) {
			rva = e.VirtualAddress
			found = true
			break
		}
	}
	if !found {
		return 0, &ErrNotFound{Kind: "symbol", Want: q.Name}
	}

	addr := moduleBase + uintptr(rva)
	if isForwardedExport(moduleBase, addr) {
		return resolveForwarder(readForwarderString(addr))
	}
	return addr, nil
}

// resolveForwarder splits a forwarder string "TARGETDLL.FuncName",
// rejects ordinal forwards ("#N", unsupported .4),
// locates the target module (loading it if a load callback is
// available) and recurses into LookupSymbol.
func resolveForwarder(fwd string) (uintptr, error) {
	dot := strings.IndexByte(fwd, '.')
	if dot < 0 {
		return 0, fmt.Errorf("loader: malformed forwarder %q", fwd)
	}
	targetDLL, targetFunc := fwd[:dot], fwd[dot+1:]
	if strings.HasPrefix(targetFunc, "#") {
		if _, err := strconv.ParseUint(targetFunc[1:], 10, 32); err == nil {
			return 0, fmt.Errorf("loader: ordinal forwarder %q unsupported", fwd)
		}
		return 0, fmt.Errorf("loader: malformed ordinal forwarder %q", fwd)
	}
	if !strings.HasSuffix(strings.ToLower(targetDLL), ".dll") {
		targetDLL += ".dll"
	}

	base, err := FindModuleUserMode(ByName(targetDLL))
	if err != nil {
		return 0, fmt.Errorf("loader: forwarder target %q: %w", targetDLL, err)
	}
	return LookupSymbol(base, ByName(targetFunc))
}
