// Command genstrings reads a TOML manifest of plaintext string
// literals and emits a generated Go source file that constructs each
// one via pkg/obf.FromEncoded/FromEncodedWide from already-obfuscated
// byte literals. The plaintext is read and XOR-encoded here, in this
// process, at generation time; only the encoded bytes ever reach the
// generated source, so the payload binary compiled from that source
// never has the plaintext in its rodata the way calling
// obf.NewString(literal) directly from payload code would.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/carved4/go-shellforge/internal/buildlog"
	"github.com/carved4/go-shellforge/internal/config"
	"github.com/carved4/go-shellforge/pkg/obf"
)

func main() {
	manifestPath := flag.String("manifest", "", "path to the TOML string manifest")
	outPath := flag.String("out", "", "path to write the generated Go source to")
	pkgName := flag.String("package", "main", "package name for the generated file")
	flag.Parse()

	if *manifestPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "genstrings: -manifest and -out are required")
		os.Exit(2)
	}

	if err := run(*manifestPath, *outPath, *pkgName); err != nil {
		buildlog.Log.Error().Err(err).Msg("string generation failed")
		os.Exit(1)
	}
}

func run(manifestPath, outPath, pkgName string) error {
	m, err := config.LoadStrings(manifestPath)
	if err != nil {
		return err
	}

	src, err := generateSource(pkgName, m)
	if err != nil {
		return fmt.Errorf("genstrings: %w", err)
	}

	if err := os.WriteFile(outPath, []byte(src), 0o644); err != nil {
		return fmt.Errorf("genstrings: write %s: %w", outPath, err)
	}
	buildlog.Log.Info().Str("out", outPath).Int("count", len(m.Strings)).Msg("wrote generated strings")
	return nil
}

func generateSource(pkgName string, m *config.StringManifest) (string, error) {
	seen := make(map[string]bool, len(m.Strings))
	var b strings.Builder

	b.WriteString("// Code generated by genstrings from a string manifest. DO NOT EDIT.\n")
	fmt.Fprintf(&b, "package %s\n\n", pkgName)
	b.WriteString("import \"github.com/carved4/go-shellforge/pkg/obf\"\n\n")

	for _, s := range m.Strings {
		if seen[s.Name] {
			return "", fmt.Errorf("duplicate string name %q", s.Name)
		}
		seen[s.Name] = true

		if s.Wide {
			writeWideVar(&b, s)
		} else {
			writeNarrowVar(&b, s)
		}
	}

	return b.String(), nil
}

func writeNarrowVar(b *strings.Builder, s config.StringDecl) {
	key, data := obf.NewStringAt(s.Line, s.Value).Encoded()
	fmt.Fprintf(b, "var %s = obf.FromEncoded(%#02x, %s)\n", s.Name, key, byteLiteral(data))
}

func writeWideVar(b *strings.Builder, s config.StringDecl) {
	key, data := obf.NewWStringAt(s.Line, s.Value).Encoded()
	fmt.Fprintf(b, "var %s = obf.FromEncodedWide(%#04x, %s)\n", s.Name, key, uint16Literal(data))
}

func byteLiteral(bs []byte) string {
	var b strings.Builder
	b.WriteString("[]byte{")
	for i, v := range bs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%#02x", v)
	}
	b.WriteString("}")
	return b.String()
}

func uint16Literal(us []uint16) string {
	var b strings.Builder
	b.WriteString("[]uint16{")
	for i, v := range us {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%#04x", v)
	}
	b.WriteString("}")
	return b.String()
}
