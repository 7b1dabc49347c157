// Command gendispatch reads a TOML build manifest, replays its import
// declarations through pkg/dispatch's validator, and emits a generated
// Go source file declaring the resulting Manifest and the frozen
// header layout for the manifest's feature set — the practical stand-in
// for the "macro-expanded structs" option in design notes,
// since Go has no template metaprogramming to freeze a struct layout
// at declaration time the way the original C++ DSL does.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/carved4/go-shellforge/internal/buildlog"
	"github.com/carved4/go-shellforge/internal/config"
	"github.com/carved4/go-shellforge/pkg/dispatch"
	"github.com/carved4/go-shellforge/pkg/obf"
)

func main() {
	manifestPath := flag.String("manifest", "", "path to the TOML build manifest")
	outPath := flag.String("out", "", "path to write the generated Go source to")
	pkgName := flag.String("package", "main", "package name for the generated file")
	flag.Parse()

	if *manifestPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "gendispatch: -manifest and -out are required")
		os.Exit(2)
	}

	if err := run(*manifestPath, *outPath, *pkgName); err != nil {
		buildlog.Log.Error().Err(err).Msg("generation failed")
		os.Exit(1)
	}
}

func run(manifestPath, outPath, pkgName string) error {
	buildID := uuid.New().String()
	log := buildlog.WithBuildID(buildID)

	cfg, err := config.Load(manifestPath)
	if err != nil {
		return err
	}
	log.Info().Str("arch", string(cfg.Arch)).Str("mode", string(cfg.Mode)).
		Int("imports", len(cfg.Imports)).Msg("loaded build manifest")

	manifest, err := buildManifest(cfg)
	if err != nil {
		return fmt.Errorf("gendispatch: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return fmt.Errorf("gendispatch: manifest failed validation: %w", err)
	}

	if collision := checkCollisions(manifest); collision != "" {
		log.Warn().Str("name", collision).Msg("hash collision against an earlier declared name")
	}

	features := dispatchFeatures(cfg.Features)
	src := generateSource(pkgName, buildID, cfg, manifest, features)

	if err := os.WriteFile(outPath, []byte(src), 0o644); err != nil {
		return fmt.Errorf("gendispatch: write %s: %w", outPath, err)
	}
	log.Info().Str("out", outPath).Msg("wrote generated dispatch table")
	return nil
}

// buildManifest replays cfg's flat import list into a dispatch.Manifest,
// computing each symbol's nearest-preceding-module ParentOrdinal the
// same way pkg/dispatch's own builder does, since cmd/gendispatch
// builds the Manifest directly from data instead of through the
// generic Begin/Module/Symbol/End DSL.
func buildManifest(cfg *config.Manifest) (*dispatch.Manifest, error) {
	decls := make([]dispatch.Decl, 0, len(cfg.Imports))
	lastModule := -1

	for i, imp := range cfg.Imports {
		flags, err := parseFlags(imp.Flags)
		if err != nil {
			return nil, fmt.Errorf("import #%d (%q): %w", i, imp.Name, err)
		}

		switch imp.Kind {
		case "module":
			decls = append(decls, dispatch.Decl{
				Ordinal: i, Kind: dispatch.KindModule, Name: imp.Name,
				Flags: flags, ParentOrdinal: -1,
			})
			lastModule = i
		case "symbol":
			if lastModule < 0 {
				return nil, fmt.Errorf("import #%d (%q): symbol with no preceding module", i, imp.Name)
			}
			decls = append(decls, dispatch.Decl{
				Ordinal: i, Kind: dispatch.KindSymbol, Name: imp.Name,
				Flags: flags, ParentOrdinal: lastModule,
			})
		default:
			return nil, fmt.Errorf("import #%d (%q): unknown kind %q", i, imp.Name, imp.Kind)
		}
	}

	return &dispatch.Manifest{Decls: decls}, nil
}

func parseFlags(names []string) (dispatch.Flags, error) {
	var f dispatch.Flags
	for _, n := range names {
		switch n {
		case "dynamic-resolve":
			f |= dispatch.Flags(dispatch.DynamicResolve)
		case "dynamic-load":
			f |= dispatch.Flags(dispatch.DynamicLoad)
		case "dynamic-unload":
			f |= dispatch.Flags(dispatch.DynamicUnload)
		case "string-module":
			f |= dispatch.Flags(dispatch.StringModule)
		case "string-symbol":
			f |= dispatch.Flags(dispatch.StringSymbol)
		default:
			return 0, fmt.Errorf("unknown flag %q", n)
		}
	}
	return f, nil
}

func dispatchFeatures(f config.Features) dispatch.Features {
	return dispatch.Features{
		Cleanup: f.Cleanup,
		Free: f.Free,
		LoadModule: f.LoadModule,
		UnloadModule: f.UnloadModule,
		LookupSymbol: f.LookupSymbol,
	}
}

// checkCollisions runs every declared name through a CollisionSet,
// returning the first name found to share a payload hash with an
// earlier, distinct name — a build-time safety net the payload runtime
// itself cannot afford (Open Question (b)).
func checkCollisions(m *dispatch.Manifest) string {
	set := obf.NewCollisionSet()
	for _, d := range m.Decls {
		if existing := set.Check(d.Name); existing != "" {
			return d.Name
		}
	}
	return ""
}

func generateSource(pkgName, buildID string, cfg *config.Manifest, m *dispatch.Manifest, features dispatch.Features) string {
	var b strings.Builder

	fmt.Fprintf(&b, "// Code generated by gendispatch from a %s/%s build manifest. DO NOT EDIT.\n", cfg.Arch, cfg.Mode)
	fmt.Fprintf(&b, "// build id: %s\n", buildID)
	fmt.Fprintf(&b, "package %s\n\n", pkgName)
	fmt.Fprintf(&b, "import \"github.com/carved4/go-shellforge/pkg/dispatch\"\n\n")

	writeHeaderOffsets(&b, features)
	writeManifest(&b, m)

	return b.String()
}

func writeHeaderOffsets(b *strings.Builder, features dispatch.Features) {
	fmt.Fprintf(b, "// Frozen header layout for this build's feature set, at both word\n")
	fmt.Fprintf(b, "// sizes. An assembly prologue generated against the same manifest\n")
	fmt.Fprintf(b, "// reads these offsets as numeric literals.\n")
	for _, ws := range []int{4, 8} {
		fmt.Fprintf(b, "// word_size=%d: ", ws)
		first := true
		for _, s := range features.Enabled() {
			off, _ := features.Offset(s, ws)
			if !first {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s@%d", s, off)
			first = false
		}
		if first {
			b.WriteString("(no slots enabled)")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeManifest(b *strings.Builder, m *dispatch.Manifest) {
	fmt.Fprintf(b, "var GeneratedManifest = &dispatch.Manifest{\n\tDecls: []dispatch.Decl{\n")
	for _, d := range m.Decls {
		fmt.Fprintf(b, "\t\t{Ordinal: %d, Kind: %s, Name: %q, Flags: %d, ParentOrdinal: %d},\n",
			d.Ordinal, kindLiteral(d.Kind), d.Name, d.Flags, d.ParentOrdinal)
	}
	fmt.Fprintf(b, "\t},\n}\n")
}

func kindLiteral(k dispatch.Kind) string {
	if k == dispatch.KindModule {
		return "dispatch.KindModule"
	}
	return "dispatch.KindSymbol"
}
