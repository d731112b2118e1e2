package functions

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned by LoadFile for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported signature file format")

// document is the on-disk layout shared by the YAML and TOML formats.
type document struct {
	Functions []Signature `yaml:"functions" toml:"functions"`
}

// LoadYAML reads a signature table in YAML.
func LoadYAML(r io.Reader) (Table, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse signatures: %w", err)
	}
	return NewTable(doc.Functions...)
}

// LoadTOML reads a signature table in TOML.
func LoadTOML(r io.Reader) (Table, error) {
	var doc document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signatures: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("failed to parse signatures: unknown key %s", undecoded[0])
	}
	return NewTable(doc.Functions...)
}

// LoadFile reads a signature table, choosing the format by extension:
// .yaml and .yml for YAML, .toml for TOML.
func LoadFile(path string) (Table, error) {
	var load func(io.Reader) (Table, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		load = LoadYAML
	case ".toml":
		load = LoadTOML
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signatures: %w", err)
	}
	table, err := load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
