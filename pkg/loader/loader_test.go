package loader

import (
	"testing"

	"github.com/carved4/go-shellforge/pkg/obf"
)

func TestMatchesQueryByName(t *testing.T) {
	if !MatchesQuery("Sleep", ByName("sleep")) {
		t.Fatal("expected case-insensitive name match")
	}
	if MatchesQuery("Sleep", ByName("SleepEx")) {
		t.Fatal("expected no match on different names")
	}
}

func TestMatchesQueryByHash(t *testing.T) {
	q := ByHash(obf.HashASCII("MessageBoxA"))
	if !MatchesQuery("MessageBoxA", q) {
		t.Fatal("expected hash match")
	}
	if MatchesQuery("MessageBoxW", q) {
		t.Fatal("expected no hash match against a different name")
	}
}

func TestErrNotFoundMessage(t *testing.T) {
	err := &ErrNotFound{Kind: "module", Want: "foo.dll"}
	if err.Error() != "module not found: foo.dll" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	empty := &ErrNotFound{Kind: "symbol"}
	if empty.Error() != "symbol not found" {
		t.Fatalf("unexpected message: %s", empty.Error())
	}
}
