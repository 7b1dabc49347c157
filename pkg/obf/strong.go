package obf

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"sync"
)

// StrongHash is a collision-resistant hash used only by the build-time
// manifest validator (cmd/gendispatch) to double check that two
// declared names never collide under the payload's cheap FNV-1a hash
// before it ships a table that would silently resolve the wrong
// export. It must never be called from payload-resident code: SHA-256
// pulls in far more machine code than an import/dispatch payload can
// justify, and the payload never needs collision resistance, only a
// deterministic 32-bit tag. Adapted from a SHA-256-based Hash/GetHash
// scheme, repurposed from the payload's runtime hash to a build-time
// collision check.
func StrongHash(s string) [32]byte {
	return sha256.Sum256([]byte(strings.ToUpper(s)))
}

// CollisionSet accumulates (FNV hash -> declared name) pairs across a
// manifest and reports whether two distinct names ever produced the
// same HashASCII value, using StrongHash to confirm the names really
// do differ rather than trusting string equality on possibly-decoded
// buffers.
type CollisionSet struct {
	mu   sync.Mutex
	seen map[uint32]string
}

// NewCollisionSet returns an empty CollisionSet.
func NewCollisionSet() *CollisionSet {
	return &CollisionSet{seen: make(map[uint32]string)}
}

// Check records name's hash and returns the previously recorded name
// if a distinct name already produced the same hash, or "" otherwise.
func (c *CollisionSet) Check(name string) (collidesWith string) {
	h := HashASCII(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.seen[h]; ok {
		if !strings.EqualFold(existing, name) {
			return existing
		}
		return ""
	}
	c.seen[h] = name
	return ""
}

// fingerprint is a helper exposed for tests that want a deterministic
// 32-bit tag derived from StrongHash, independent of HashASCII, to
// sanity check that HashASCII collisions found in the wild are real
// and not an artifact of a broken fold.
func fingerprint(s string) uint32 {
	sum := StrongHash(s)
	return binary.LittleEndian.Uint32(sum[:4])
}
