//go:build windows

package platform

import (
	"testing"

	"github.com/carved4/go-shellforge/pkg/dispatch"
)

func TestNewKernelModeRejectsDynamicLoad(t *testing.T) {
	_, err := newKernelMode(dispatch.Features{LoadModule: true})
	if err == nil {
		t.Fatal("expected an error for dynamic-load under kernel mode")
	}
	uf, ok := err.(*UnsupportedFeatureError)
	if !ok {
		t.Fatalf("expected *UnsupportedFeatureError, got %T", err)
	}
	if uf.Mode != ModeKernelMode || uf.Feature != "dynamic-load" {
		t.Fatalf("unexpected error contents: %+v", uf)
	}
}

func TestNewKernelModeRejectsDynamicUnload(t *testing.T) {
	if _, err := newKernelMode(dispatch.Features{UnloadModule: true}); err == nil {
		t.Fatal("expected an error for dynamic-unload under kernel mode")
	}
}

func TestNewKernelModeRejectsLookupSymbol(t *testing.T) {
	if _, err := newKernelMode(dispatch.Features{LookupSymbol: true}); err == nil {
		t.Fatal("expected an error for lookup_symbol under kernel mode")
	}
}

func TestNewKernelModeAcceptsFreeOnly(t *testing.T) {
	km, err := newKernelMode(dispatch.Features{Free: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !km.Features().Free {
		t.Fatal("expected Free feature to survive construction")
	}
}
