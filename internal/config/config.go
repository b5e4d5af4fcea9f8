// Package config loads optional defaults for the dump splitter from a
// TOML file, in the same struct-tag convention the teacher's schema
// parser uses for its own TOML documents.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// SplitterConfig is the top-level TOML document a splitter run may be
// configured from. CLI flags, when set, override whatever this file
// provides.
type SplitterConfig struct {
	Target        string `toml:"target"`
	Directory     string `toml:"directory"`
	FilterCommand string `toml:"filter_command"`
	Regex         string `toml:"regex"`
}

// Default returns the splitter's built-in defaults, used when no config
// file is given and no flag overrides a field.
func Default() SplitterConfig {
	return SplitterConfig{
		Target:        "5.5",
		Directory:     ".",
		FilterCommand: "gzip -1",
		Regex:         ".*",
	}
}

// Load reads path as a TOML SplitterConfig, returning Default() fields
// for any key the file doesn't set.
func Load(path string) (SplitterConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return SplitterConfig{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes r as a TOML SplitterConfig, layering it over Default().
func Parse(r io.Reader) (SplitterConfig, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return SplitterConfig{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}
