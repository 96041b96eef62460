package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"salmonsurvey/internal/core"
)

//go:embed taxonomy.yaml
var defaultTaxonomyYAML []byte

// LoadTaxonomy reads the category grouping from path, or the built-in
// grouping when path is empty.
func LoadTaxonomy(path string) (core.Taxonomy, error) {
	data := defaultTaxonomyYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return core.Taxonomy{}, fmt.Errorf("read taxonomy file: %w", err)
		}
		data = b
	}
	return ParseTaxonomy(data)
}

// ParseTaxonomy decodes and validates a YAML taxonomy document.
func ParseTaxonomy(data []byte) (core.Taxonomy, error) {
	var tax core.Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return core.Taxonomy{}, fmt.Errorf("parse taxonomy: %w", err)
	}
	if err := tax.Validate(); err != nil {
		return core.Taxonomy{}, err
	}
	return tax, nil
}
