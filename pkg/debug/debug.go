// Package debug provides shared debug logging functionality for go-shellforge's
// host-side tooling (cmd/launcher). It is never imported by the payload-resident
// packages, which must assume no I/O is available at runtime.
package debug

import (
	"fmt"
	"os"
	"strings"
)

var (
	// debugEnabled controls whether debug output is printed
	debugEnabled bool
)

func init() {
	if debug := os.Getenv("DEBUG"); debug != "" {
		if strings.ToLower(debug) == "true" || debug == "1" {
			debugEnabled = true
		}
	}
}

// SetDebugMode enables or disables debug logging programmatically
func SetDebugMode(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug mode is currently enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// Printf prints debug messages only when debug mode is enabled
func Printf(format string, args ...interface{}) {
	if debugEnabled {
		fmt.Printf("[DEBUG] "+format, args...)
	}
}

// Println prints debug messages only when debug mode is enabled
func Println(args ...interface{}) {
	if debugEnabled {
		fmt.Print("[DEBUG] ")
		fmt.Println(args...)
	}
}

// Printfln prints debug messages with a specific prefix only when debug mode is enabled
func Printfln(prefix, format string, args ...interface{}) {
	if debugEnabled {
		fmt.Printf("[DEBUG %s] "+format, append([]interface{}{prefix}, args...)...)
	}
} 