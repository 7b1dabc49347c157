// Package platform binds the abstract resolution operations
// pkg/dispatch's Trait interface describes to a concrete provider:
// ModeUserMode (PEB walk, LoadLibrary/FreeLibrary/GetProcAddress) or
// ModeKernelMode (system-module query).
package platform

import "github.com/carved4/go-shellforge/pkg/dispatch"

// Mode selects which platform trait a build targets.
type Mode int

const (
	ModeUserMode Mode = iota
	ModeKernelMode
)

func (m Mode) String() string {
	if m == ModeKernelMode {
		return "kernel-mode"
	}
	return "user-mode"
}

// New constructs the trait named by mode from features, rejecting
// feature/mode combinations that are a static error
// (dynamic-load/dynamic-unload/lookup_symbol under the kernel-mode
// trait).
func New(mode Mode, features dispatch.Features) (dispatch.Trait, error) {
	switch mode {
	case ModeUserMode:
		return newUserMode(features), nil
	case ModeKernelMode:
		return newKernelMode(features)
	default:
		return nil, &UnknownModeError{Mode: mode}
	}
}

// UnknownModeError is returned by New for an unrecognized Mode value.
type UnknownModeError struct{ Mode Mode }

func (e *UnknownModeError) Error() string {
	return "platform: unknown mode " + e.Mode.String()
}

// UnsupportedFeatureError is returned when a build declares a feature
// its chosen mode's static rules forbid.
type UnsupportedFeatureError struct {
	Mode Mode
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return e.Mode.String() + " does not support feature " + e.Feature
}
