package dispatch

// Root is the empty base of every entry chain; Begin() starts here.
type Root struct{}

// ModuleEntry structurally extends Prev, realizing "entry
// N+1 structurally extends entry N": a symbol declared anywhere later
// in the chain can always see this module through its own Prev field,
// which is exactly the ancestry the flag-inheritance and slot-lookup
// rules need. This is the generic type-level linked list called for
// in Design Note 9.
type ModuleEntry[Prev any] struct {
	Prev Prev
	Ordinal int
	Name string
	Flags Flags
}

// SymbolEntry is the symbol analogue of ModuleEntry.
type SymbolEntry[Prev any] struct {
	Prev Prev
	Ordinal int
	Name string
	Flags Flags
}

// Chain pairs a typed entry chain with the flat Manifest being built
// alongside it. The typed chain exists to make the declaration DSL
// read as a compile-time composition (per Design Note 9); the
// Manifest is what cmd/gendispatch actually consumes, since a payload
// binary has no use for the generic scaffolding at run time — it
// needs a flat array of resolved slots (see table.go).
type Chain[T any] struct {
	entries T
	manifest *Manifest
}

// Begin starts a new declaration chain.
func Begin() *Chain[Root] {
	return &Chain[Root]{entries: Root{}, manifest: newManifest()}
}

// Module extends c with a module declaration. Panics with a
// Diagnostic if the declaration violates a static invariant
// (dynamic-unload without dynamic-load) — the nearest Go analogue to
// "fails to compile with a diagnostic that names the offending
// import", since this call happens at chain-construction time, before
// any table is generated or run.
func Module[Prev any](c *Chain[Prev], name string, flags ...Flag) *Chain[ModuleEntry[Prev]] {
	f := combine(flags)
	d, err := c.manifest.append(KindModule, name, f)
	if err != nil {
		panic(err)
	}
	return &Chain[ModuleEntry[Prev]]{
		entries: ModuleEntry[Prev]{Prev: c.entries, Ordinal: d.Ordinal, Name: name, Flags: f},
		manifest: c.manifest,
	}
}

// Symbol extends c with a symbol declaration. Panics with a
// Diagnostic under the same conditions as Module: a module-only flag
// on a symbol, or no preceding module in the chain.
func Symbol[Prev any](c *Chain[Prev], name string, flags ...Flag) *Chain[SymbolEntry[Prev]] {
	f := combine(flags)
	d, err := c.manifest.append(KindSymbol, name, f)
	if err != nil {
		panic(err)
	}
	return &Chain[SymbolEntry[Prev]]{
		entries: SymbolEntry[Prev]{Prev: c.entries, Ordinal: d.Ordinal, Name: name, Flags: f},
		manifest: c.manifest,
	}
}

// End closes the chain and returns the validated Manifest for
// cmd/gendispatch (or, in tests, for direct construction of a Table
// via FromManifest).
func End[T any](c *Chain[T]) *Manifest {
	return c.manifest
}
