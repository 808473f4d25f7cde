package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type menuFile struct {
	Items []Entry `yaml:"items"`
}

// Parse decodes a YAML menu document
func Parse(data []byte) (*Catalog, error) {
	var f menuFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse menu: %w", err)
	}
	return New(f.Items)
}

// LoadFile reads a YAML menu file. An empty path yields the default catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}
	return Parse(data)
}
