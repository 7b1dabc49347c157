//go:build windows

package loader

// Windows loader/PE structures needed for PEB walking and export
// parsing. Field layouts follow pkg/syscallresolve's
// LDR_DATA_TABLE_ENTRY/PEB definitions.

type listEntry struct {
	Flink *listEntry
	Blink *listEntry
}

type unicodeString struct {
	Length        uint16
	MaximumLength uint16
	Buffer        *uint16
}

type ldrDataTableEntry struct {
	InLoadOrderLinks           listEntry
	InMemoryOrderLinks         listEntry
	InInitializationOrderLinks listEntry
	DllBase                    uintptr
	EntryPoint                 uintptr
	SizeOfImage                uintptr
	FullDllName                unicodeString
	BaseDllName                unicodeString
}

type pebLdrData struct {
	Length                          uint32
	Initialized                     uint32
	SsHandle                        uintptr
	InLoadOrderModuleList           listEntry
	InMemoryOrderModuleList         listEntry
	InInitializationOrderModuleList listEntry
}

type peb struct {
	Reserved1              [2]byte
	BeingDebugged          byte
	Reserved2              byte
	Reserved3              [2]uintptr
	Ldr                    *pebLdrData
	ProcessParameters      uintptr
	Reserved4              [3]uintptr
	AtlThunkSListPtr       uintptr
	Reserved5              uintptr
	Reserved6              uint32
	Reserved7              uintptr
	Reserved8              uint32
	AtlThunkSListPtr32     uint32
	ApiSetMap              uintptr
	Reserved9              [44]uintptr
	Reserved10             [96]byte
	PostProcessInitRoutine uintptr
	Reserved11             [128]byte
	Reserved12             [1]uintptr
	SessionId              uint32
}

// utf16ToBytes reads a NUL-terminated (or length-bounded) UTF-16
// buffer into a []uint16 without allocating a Go string, so callers on
// the hot resolution path can hash or compare it directly.
func utf16Slice(ptr *uint16, maxLen int) []uint16 {
	if ptr == nil {
		return nil
	}
	out := make([]uint16, 0, 16)
	for i := 0; i < maxLen; i++ {
		u := *(*uint16)(offsetPtr(ptr, i*2))
		if u == 0 {
			break
		}
		out = append(out, u)
	}
	return out
}
