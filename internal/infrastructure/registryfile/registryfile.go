// Package registryfile loads a category keyword table from YAML.
package registryfile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skinmatch/backend/internal/domain"
)

// document is the file layout:
//
//	categories:
//	  - name: hyaluronic
//	    keywords: [hyaluronic acid, sodium hyaluronate]
type document struct {
	Categories []domain.Category `yaml:"categories"`
}

// Load reads a category table from a YAML file
func Load(path string) ([]domain.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode parses a category table. Unknown fields are rejected so typos in
// hand-edited files surface at startup.
func Decode(r io.Reader) ([]domain.Category, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty registry file", domain.ErrInvalidRegistry)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRegistry, err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories defined", domain.ErrInvalidRegistry)
	}
	return doc.Categories, nil
}
