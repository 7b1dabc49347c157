// Package config loads the TOML build manifest that
// cmd/gendispatch turns into a validated pkg/dispatch.Manifest and a
// generated dispatch table. Grounded on seahop-NexusC2's
// internal/common/config package: a plain struct decoded with
// github.com/BurntSushi/toml, defaults applied after decode, a single
// Load entry point.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Arch names a target word size for the PIC discipline (amd64 needs
// no load-delta fixup, 386 does).
type Arch string

const (
	ArchAMD64 Arch = "amd64"
	Arch386 Arch = "386"
)

// Mode names the platform trait a build selects.
type Mode string

const (
	ModeUser Mode = "user"
	ModeKernel Mode = "kernel"
)

// Features mirrors dispatch.Features in a TOML-friendly shape, plus a
// dynamic-resolve default a module entry can set for its symbols.
type Features struct {
	Cleanup bool `toml:"cleanup"`
	Free bool `toml:"free"`
	LoadModule bool `toml:"load_module"`
	UnloadModule bool `toml:"unload_module"`
	LookupSymbol bool `toml:"lookup_symbol"`
	DynamicResolveDefault bool `toml:"dynamic_resolve_default"`
}

// Import is one declared entry in the build manifest's import list, in
// declaration order. Kind is "module" or "symbol"; Flags names zero or
// more of dispatch's flag identifiers ("dynamic-load", "dynamic-unload",
// "dynamic-resolve", "string-module", "string-symbol").
type Import struct {
	Kind string `toml:"kind"`
	Name string `toml:"name"`
	Flags []string `toml:"flags"`
}

// Manifest is the decoded build manifest: target arch, platform mode,
// enabled header features, and the flat ordered import declaration
// list cmd/gendispatch replays through pkg/dispatch's builder.
type Manifest struct {
	Arch Arch `toml:"arch"`
	Mode Mode `toml:"mode"`
	Features Features `toml:"features"`
	Imports []Import `toml:"import"`
	BuildID string `toml:"build_id,omitempty"`
}

// Load decodes path into a Manifest and validates the fields that
// don't depend on pkg/dispatch's own static checks (arch/mode
// spelling, a non-empty import list); the import list's structural
// rules (module-only flags, ancestry, inheritance) are checked when
// cmd/gendispatch replays it through pkg/dispatch's builder, since
// that is the single source of truth for those rules.
func Load(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	switch m.Arch {
	case ArchAMD64, Arch386:
	default:
		return fmt.Errorf("config: unknown arch %q, want %q or %q", m.Arch, ArchAMD64, Arch386)
	}
	switch m.Mode {
	case ModeUser, ModeKernel:
	default:
		return fmt.Errorf("config: unknown mode %q, want %q or %q", m.Mode, ModeUser, ModeKernel)
	}
	if len(m.Imports) == 0 {
		return fmt.Errorf("config: manifest declares no imports")
	}
	if m.Mode == ModeKernel && (m.Features.LoadModule || m.Features.UnloadModule || m.Features.LookupSymbol) {
		return fmt.Errorf("config: kernel mode does not support load_module/unload_module/lookup_symbol features")
	}
	return nil
}
