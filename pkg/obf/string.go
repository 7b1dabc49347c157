package obf

import "runtime"

// String is a compile-time-literal-shaped obfuscated narrow string
// record: [key, length, encoded bytes...]. The plaintext, including its
// NUL terminator, is XOR-encoded byte-for-byte with key and never
// appears in the binary's rodata — but only if it is constructed with
// FromEncoded from bytes already computed elsewhere. See NewString for
// why payload source must never call that directly.
type String struct {
	key  uint8
	data []byte
}

// NewString encodes s (its NUL terminator included) with a key derived
// from the call site's source line, and returns the result. This is
// the algorithm cmd/genstrings runs, in its own process, against a
// manifest literal at generation time; it is exported so the generator
// (and this package's own tests) can call it, and so that generator's
// output stays literally the same shape a hand call would produce.
//
// It must never be called from payload source with a string literal
// argument: the Go compiler embeds a literal argument's bytes into the
// binary's rodata as part of compiling the call expression itself,
// before NewString ever runs, so the subsequent XOR only ever
// obfuscates a copy — the plaintext stays in the linked binary
// regardless. Payload code should reference a package-level var
// declared with FromEncoded in a `cmd/genstrings`-generated file
// instead.
func NewString(s string) *String {
	_, _, line, _ := runtime.Caller(1)
	key := lineKey8(line)
	return newStringWithKey(s, key)
}

func newStringWithKey(s string, key uint8) *String {
	plain := append([]byte(s), 0)
	enc := make([]byte, len(plain))
	for i, b := range plain {
		enc[i] = b ^ key
	}
	return &String{key: key, data: enc}
}

// FromEncoded wraps data that has already been XOR-encoded with key,
// performing no further transformation. This is what a
// cmd/genstrings-generated file calls: encoded and key are literals
// computed by the generator from the manifest's plaintext, so the
// plaintext itself never appears in this call or anywhere in the
// resulting source.
func FromEncoded(key uint8, encoded []byte) *String {
	return &String{key: key, data: encoded}
}

// Encoded returns s's key and still-encoded bytes without decoding it,
// for cmd/genstrings to read back out of the NewString call it makes
// against a manifest literal before emitting the pair as source
// literals.
func (s *String) Encoded() (key uint8, data []byte) {
	return s.key, s.data
}

// Decode reads String.key; if zero the data is already plaintext (a
// prior Decode ran), otherwise it XORs every byte in place and zeroes
// the key so later calls are idempotent. Not synchronized: the payload
// is single-threaded by design (see the concurrency model).
func (s *String) Decode() []byte {
	if s.key == 0 {
		return s.data
	}
	for i := range s.data {
		s.data[i] ^= s.key
	}
	s.key = 0
	return s.data
}

// String decodes and returns the value without its trailing NUL, for
// use where a Go string is convenient (diagnostics, tests). Payload
// code that needs a raw pointer should use Decode directly instead.
func (s *String) String() string {
	b := s.Decode()
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	}
	return string(b)
}

// WString is the wide-character (UTF-16) analogue of String, keyed
// with a 16-bit value by the same line-derived construction.
type WString struct {
	key  uint16
	data []uint16
}

// NewWString encodes s as UTF-16LE, terminator included, with a 16-bit
// key derived from the call site's line. Subject to the same
// generator-only restriction as NewString: never call this from
// payload source with a literal argument.
func NewWString(s string) *WString {
	_, _, line, _ := runtime.Caller(1)
	return newWStringWithKey(s, lineKey16(line))
}

func newWStringWithKey(s string, key uint16) *WString {
	units := utf16Encode(s)
	units = append(units, 0)
	enc := make([]uint16, len(units))
	for i, u := range units {
		enc[i] = u ^ key
	}
	return &WString{key: key, data: enc}
}

// FromEncodedWide is the WString analogue of FromEncoded.
func FromEncodedWide(key uint16, encoded []uint16) *WString {
	return &WString{key: key, data: encoded}
}

// Encoded is the WString analogue of String.Encoded.
func (w *WString) Encoded() (key uint16, data []uint16) {
	return w.key, w.data
}

// NewStringAt and NewWStringAt are the generator-facing analogues of
// NewString/NewWString: they derive the key from an explicit line
// number instead of the caller's own source position, since
// cmd/genstrings runs in its own process, not inside the payload it
// generates for. line is the manifest entry's declared source line, so
// the derived key still reflects "where in the source this string was
// written" the way a hand-written call would.
func NewStringAt(line int, s string) *String   { return newStringWithKey(s, lineKey8(line)) }
func NewWStringAt(line int, s string) *WString { return newWStringWithKey(s, lineKey16(line)) }

// Decode is the WString analogue of String.Decode.
func (w *WString) Decode() []uint16 {
	if w.key == 0 {
		return w.data
	}
	for i := range w.data {
		w.data[i] ^= w.key
	}
	w.key = 0
	return w.data
}

// lineKey8 derives a non-zero 8-bit key from a source line number via
// a linear congruence, with bit 0 forced set so the value can never
// collide with the zero "already decoded" sentinel.
func lineKey8(line int) uint8 {
	k := uint8(line*addKeyMul+addKeyInc) | 1
	return k
}

// lineKey16 is the 16-bit analogue of lineKey8.
func lineKey16(line int) uint16 {
	k := uint16(line*addKeyMul16+addKeyInc16) | 1
	return k
}

const (
	addKeyMul   = 0x9d
	addKeyInc   = 0x2b
	addKeyMul16 = 0x9e3d
	addKeyInc16 = 0x2b7f
)

// utf16Encode is a small inline UTF-16LE encoder so this package pulls
// in no encoding/unicode dependency, matching the freestanding-primitive
// spirit of the rest of the obf package.
func utf16Encode(s string) []uint16 {
	out := make([]uint16, 0, len(s))
	for _, r := range s {
		switch {
		case r < 0x10000:
			out = append(out, uint16(r))
		default:
			r -= 0x10000
			hi := uint16(0xd800 + (r >> 10))
			lo := uint16(0xdc00 + (r & 0x3ff))
			out = append(out, hi, lo)
		}
	}
	return out
}
