package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// StringDecl is one literal cmd/genstrings will obfuscate: Line stands
// in for the source line NewStringAt/NewWStringAt would otherwise read
// from a real call site, since the generator runs outside the payload
// it emits code for.
type StringDecl struct {
	Name string `toml:"name"`
	Value string `toml:"value"`
	Wide bool `toml:"wide"`
	Line int `toml:"line"`
}

// StringManifest is the decoded strings-to-obfuscate manifest.
type StringManifest struct {
	Strings []StringDecl `toml:"string"`
}

// LoadStrings decodes path into a StringManifest.
func LoadStrings(path string) (*StringManifest, error) {
	var m StringManifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	for i, s := range m.Strings {
		if s.Name == "" {
			return nil, fmt.Errorf("config: string #%d has no name", i)
		}
		if s.Line == 0 {
			return nil, fmt.Errorf("config: string %q has no line", s.Name)
		}
	}
	return &m, nil
}
