// Package obf provides the freestanding string-hashing and
// string-obfuscation primitives used by the import declaration DSL.
package obf

const (
	fnvOffset32 uint32 = 2166136261
	fnvPrime32  uint32 = 16777619
)

// FoldByte case-folds a single byte the way the hasher and the
// comparators agree on: subtract 0x20 from any byte >= 'a'. There is
// deliberately no upper bound on that check — '{', '|', '}', DEL, and
// every byte past it fold the same way 'a'..'z' do, matching the
// runtime fold this hash was ported from.
func FoldByte(b byte) byte {
	if b >= 'a' {
		return b - 0x20
	}
	return b
}

// HashASCII computes the FNV-1a hash of s after applying FoldByte to
// every byte, so that HashASCII(s) == HashASCII(upper(s)) == HashASCII(lower(s))
// for any ASCII-only s.
func HashASCII(s string) uint32 {
	h := fnvOffset32
	for i := 0; i < len(s); i++ {
		h ^= uint32(FoldByte(s[i]))
		h *= fnvPrime32
	}
	return h
}

// HashASCIIBytes is HashASCII over a byte slice, used when hashing
// names read directly out of process memory (PEB module names, PE
// export names) without an intermediate string allocation.
func HashASCIIBytes(b []byte) uint32 {
	h := fnvOffset32
	for i := 0; i < len(b); i++ {
		h ^= uint32(FoldByte(b[i]))
		h *= fnvPrime32
	}
	return h
}

// HashWide is HashASCII over a UTF-16LE buffer whose code units are all
// within the ASCII range, which holds for every Windows module and
// export name this framework resolves. Non-ASCII code units fold to
// themselves, same policy as FoldByte for out-of-range bytes.
func HashWide(u []uint16) uint32 {
	h := fnvOffset32
	for _, c := range u {
		b := byte(c)
		if c <= 0x7f {
			b = FoldByte(b)
		}
		h ^= uint32(b)
		h *= fnvPrime32
	}
	return h
}

// EqualFoldASCII reports whether a and b are equal under FoldByte,
// byte for byte. Used to compare a candidate module basename or export
// name against a compile-time literal without allocating.
func EqualFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if FoldByte(a[i]) != FoldByte(b[i]) {
			return false
		}
	}
	return true
}

// EqualFoldWideASCII compares a UTF-16 buffer against a narrow ASCII
// literal under the same fold, for basename comparisons read straight
// out of a UNICODE_STRING.
func EqualFoldWideASCII(wide []uint16, narrow string) bool {
	if len(wide) != len(narrow) {
		return false
	}
	for i := range wide {
		wb := byte(wide[i])
		if wide[i] > 0x7f {
			return false
		}
		if FoldByte(wb) != FoldByte(narrow[i]) {
			return false
		}
	}
	return true
}
