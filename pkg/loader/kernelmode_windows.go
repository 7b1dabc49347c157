//go:build windows

package loader

import (
	"fmt"
	"unsafe"

	"github.com/carved4/go-shellforge/pkg/abi"
	"github.com/carved4/go-shellforge/pkg/obf"
)

const (
	systemModuleInformation = 11
	statusInfoLengthMismatch = 0xC0000004
	kernelModuleInitialBuffer = 1 << 15
	kernelModuleMaxGrowth = 1 << 22
	bootstrapKernelImage = "ntoskrnl.exe"
	// poolTag is the ExAllocatePoolWithTag tag, ASCII "lehS" so a
	// crash dump analyst reading pool tags back-to-front sees "Shel".
	poolTag = 0x6c656853
)

// rtlProcessModuleInformation mirrors RTL_PROCESS_MODULE_INFORMATION;
// FullPathName holds a NUL-terminated ANSI path, and OffsetToFileName
// is the byte offset into it where the basename starts.
type rtlProcessModuleInformation struct {
	Section uintptr
	MappedBase uintptr
	ImageBase uintptr
	ImageSize uint32
	Flags uint32
	LoadOrderIndex uint16
	InitOrderIndex uint16
	LoadCount uint16
	OffsetToFileName uint16
	FullPathName [256]byte
}

// kernelSymbols bundles the three kernel-image entry points the
// enumeration helper needs, each resolved once via LookupSymbol
// against kernelBase .2.
type kernelSymbols struct {
	querySystemInformation uintptr
	allocatePool uintptr
	freePool uintptr
}

func resolveKernelSymbols(kernelBase uintptr) (*kernelSymbols, error) {
	query, err := LookupSymbol(kernelBase, ByName("ZwQuerySystemInformation"))
	if err != nil {
		return nil, fmt.Errorf("loader: resolve ZwQuerySystemInformation: %w", err)
	}
	alloc, err := LookupSymbol(kernelBase, ByName("ExAllocatePoolWithTag"))
	if err != nil {
		return nil, fmt.Errorf("loader: resolve ExAllocatePoolWithTag: %w", err)
	}
	free, err := LookupSymbol(kernelBase, ByName("ExFreePool"))
	if err != nil {
		return nil, fmt.Errorf("loader: resolve ExFreePool: %w", err)
	}
	return &kernelSymbols{querySystemInformation: query, allocatePool: alloc, freePool: free}, nil
}

// FindModuleKernelMode resolves q against the kernel's loaded module
// list, obtained via a growing-buffer ZwQuerySystemInformation loop
// .2. kernelBase is the value handed to the payload's
// entry as arg1 in kernel mode. The ntoskrnl.exe bootstrap identity is
// short-circuited to kernelBase itself without any query.
func FindModuleKernelMode(kernelBase uintptr, q Query) (uintptr, error) {
	if q.Mode == MatchName && obf.EqualFoldASCII(q.Name, bootstrapKernelImage) {
		return kernelBase, nil
	}

	syms, err := resolveKernelSymbols(kernelBase)
	if err != nil {
		return 0, err
	}

	size := uintptr(kernelModuleInitialBuffer)
	for size <= kernelModuleMaxGrowth {
		buf := abi.Call(syms.allocatePool, 0 /* NonPagedPool */, size, poolTag)
		if buf == 0 {
			return 0, fmt.Errorf("loader: kernel pool allocation of %d bytes failed", size)
		}

		var returnLen uintptr
		status := abi.Call(syms.querySystemInformation,
			systemModuleInformation,
			buf,
			size,
			uintptr(unsafe.Pointer(&returnLen)))

		if uint32(status) == statusInfoLengthMismatch {
			abi.Call(syms.freePool, buf)
			size *= 2
			continue
		}
		if status != 0 {
			abi.Call(syms.freePool, buf)
			return 0, fmt.Errorf("loader: ZwQuerySystemInformation failed: status=%#x", status)
		}

		base, found := scanModuleList(buf, q)
		abi.Call(syms.freePool, buf)
		if found {
			return base, nil
		}
		return 0, &ErrNotFound{Kind: "module", Want: q.Name}
	}
	return 0, fmt.Errorf("loader: kernel module list exceeded %d bytes", kernelModuleMaxGrowth)
}

func scanModuleList(buf uintptr, q Query) (uintptr, bool) {
	count := u32At(buf)
	entrySize := unsafe.Sizeof(rtlProcessModuleInformation{})
	first := buf + unsafe.Sizeof(uint32(0))
	// The real structure pads to pointer alignment between the count
	// and the first entry; align up defensively.
	if rem := first % unsafe.Alignof(rtlProcessModuleInformation{}); rem != 0 {
		first += unsafe.Alignof(rtlProcessModuleInformation{}) - rem
	}

	for i := uint32(0); i < count; i++ {
		entry := (*rtlProcessModuleInformation)(unsafe.Pointer(first + uintptr(i)*entrySize))
		name := cStringFrom(entry.FullPathName[entry.OffsetToFileName:])
		if MatchesQuery(name, q) {
			return entry.ImageBase, true
		}
	}
	return 0, false
}

func cStringFrom(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
