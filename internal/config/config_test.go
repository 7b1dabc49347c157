package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidManifest(t *testing.T) {
	path := writeTemp(t, `
arch = "amd64"
mode = "user"

[features]
free = true

[[import]]
kind = "module"
name = "kernel32.dll"

[[import]]
kind = "symbol"
name = "Sleep"
`)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Arch != ArchAMD64 || m.Mode != ModeUser {
		t.Fatalf("unexpected arch/mode: %v/%v", m.Arch, m.Mode)
	}
	if len(m.Imports) != 2 {
		t.Fatalf("expected 2 imports, got %d", len(m.Imports))
	}
}

func TestLoadRejectsUnknownArch(t *testing.T) {
	path := writeTemp(t, `
arch = "arm64"
mode = "user"

[[import]]
kind = "module"
name = "kernel32.dll"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unsupported arch")
	}
}

func TestLoadRejectsKernelModeWithLoadModule(t *testing.T) {
	path := writeTemp(t, `
arch = "amd64"
mode = "kernel"

[features]
load_module = true

[[import]]
kind = "module"
name = "ntoskrnl.exe"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for kernel mode with load_module enabled")
	}
}

func TestLoadRejectsEmptyImportList(t *testing.T) {
	path := writeTemp(t, `
arch = "amd64"
mode = "user"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an empty import list")
	}
}
