package dispatch

import "fmt"

// Kind distinguishes a module import from a symbol import.
type Kind int

const (
	KindModule Kind = iota
	KindSymbol
)

func (k Kind) String() string {
	if k == KindModule {
		return "module"
	}
	return "symbol"
}

// Decl is one declared import: a stable ordinal, a kind, its flags,
// and its name literal. Ordinals are dense and strictly increasing in
// declaration order.
type Decl struct {
	Ordinal int
	Kind Kind
	Name string
	Flags Flags

	// ParentOrdinal is the ordinal of the nearest preceding module
	// declaration; -1 for module declarations themselves. Every symbol
	// has one by construction — Manifest.append rejects a symbol
	// without an ancestor module.
	ParentOrdinal int
}

// Diagnostic is the static-error shape a rejected declaration
// produces: a hard error that names the offending import. Manifest
// construction turns every rule violation into one of these instead
// of a generic error, so callers (both the generic chain's panic path
// and cmd/gendispatch's reporting path) can render a consistent
// message.
type Diagnostic struct {
	Ordinal int
	Name string
	Rule string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("import #%d (%q): %s", d.Ordinal, d.Name, d.Rule)
}

// Manifest is the flat, ordered, validated declaration list produced
// by the Begin/Module/Symbol/End DSL (see decl.go) or built directly
// by cmd/gendispatch from a TOML build manifest. It is the single
// source of truth cmd/gendispatch renders into a generated Table.
type Manifest struct {
	Decls []Decl
}

func newManifest() *Manifest {
	return &Manifest{}
}

// lastModuleOrdinal returns the ordinal of the most recently appended
// module declaration, or -1 if none has been appended yet.
func (m *Manifest) lastModuleOrdinal() int {
	for i := len(m.Decls) - 1; i >= 0; i-- {
		if m.Decls[i].Kind == KindModule {
			return i
		}
	}
	return -1
}

// append validates and appends one declaration, enforcing the static
// invariants:
//   - dynamic-unload requires dynamic-load on the same module
//   - module-only flags (dynamic-load, dynamic-unload, string-module)
//     never appear on a symbol
//   - every symbol has a logically preceding module
func (m *Manifest) append(kind Kind, name string, flags Flags) (Decl, error) {
	ordinal := len(m.Decls)

	if kind == KindSymbol {
		if bad := flags & Flags(moduleOnly); bad != 0 {
			return Decl{}, &Diagnostic{
				Ordinal: ordinal, Name: name,
				Rule: fmt.Sprintf("module-only flag(s) %s set on a symbol declaration", Flags(bad)),
			}
		}
		parent := m.lastModuleOrdinal()
		if parent < 0 {
			return Decl{}, &Diagnostic{
				Ordinal: ordinal, Name: name,
				Rule: "symbol declared with no preceding module",
			}
		}
		d := Decl{Ordinal: ordinal, Kind: kind, Name: name, Flags: flags, ParentOrdinal: parent}
		m.Decls = append(m.Decls, d)
		return d, nil
	}

	// kind == KindModule
	if flags.Has(DynamicUnload) && !flags.Has(DynamicLoad) {
		return Decl{}, &Diagnostic{
			Ordinal: ordinal, Name: name,
			Rule: "dynamic-unload set without dynamic-load",
		}
	}
	d := Decl{Ordinal: ordinal, Kind: kind, Name: name, Flags: flags, ParentOrdinal: -1}
	m.Decls = append(m.Decls, d)
	return d, nil
}

// EffectiveFlags computes a symbol declaration's effective flags: its
// own flags OR'd with the inheritable bits (dynamic-resolve,
// string-symbol) of its parent module. Calling this on a module
// declaration returns its own flags unchanged.
func (m *Manifest) EffectiveFlags(d Decl) Flags {
	if d.Kind != KindSymbol {
		return d.Flags
	}
	parent := m.Decls[d.ParentOrdinal]
	return d.Flags | (parent.Flags & Flags(inheritable))
}

// Validate re-checks every already-appended declaration, used by
// cmd/gendispatch when it builds a Manifest by hand from a TOML file
// rather than through the incremental DSL. Returns the first
// Diagnostic found, or nil if the whole manifest is well-formed.
func (m *Manifest) Validate() error {
	check := newManifest()
	for _, d := range m.Decls {
		if _, err := check.append(d.Kind, d.Name, d.Flags); err != nil {
			return err
		}
	}
	return nil
}
