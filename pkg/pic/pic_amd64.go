//go:build amd64

package pic

// delta is always zero on amd64: RIP-relative addressing means every
// image-resident reference is already correct regardless of load base,
// so Live and LiveAddr degrade to the identity transform.
func delta() uintptr {
	return 0
}
