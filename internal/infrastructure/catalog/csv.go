// Package catalog reads the product catalog from a delimited source file.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/skinmatch/backend/internal/domain"
)

// DefaultIngredientsColumn is the source column holding ingredient text (sic)
const DefaultIngredientsColumn = "ingridients"

// Options controls how the catalog source is read
type Options struct {
	IngredientsColumn string
	NameColumn        string
	BrandColumn       string
	TypeColumn        string
	Comma             rune
}

func (o *Options) setDefaults() {
	if o.IngredientsColumn == "" {
		o.IngredientsColumn = DefaultIngredientsColumn
	}
	if o.NameColumn == "" {
		o.NameColumn = "name"
	}
	if o.BrandColumn == "" {
		o.BrandColumn = "brand"
	}
	if o.TypeColumn == "" {
		o.TypeColumn = "type"
	}
	if o.Comma == 0 {
		o.Comma = ','
	}
}

// LoadCSV opens and reads a catalog file
func LoadCSV(path string, opts Options) ([]domain.CatalogRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV reads a header-led catalog. Extra columns are ignored; a missing
// required column fails with ErrInvalidCatalog. Empty ingredient cells become
// empty raw text.
func ReadCSV(r io.Reader, opts Options) ([]domain.CatalogRow, error) {
	opts.setDefaults()

	reader := csv.NewReader(r)
	reader.Comma = opts.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", domain.ErrInvalidCatalog)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	lookup := func(name string) (int, error) {
		idx, ok := columns[name]
		if !ok {
			return 0, fmt.Errorf("%w: missing column %q", domain.ErrInvalidCatalog, name)
		}
		return idx, nil
	}

	ingredientsIdx, err := lookup(opts.IngredientsColumn)
	if err != nil {
		return nil, err
	}
	nameIdx, err := lookup(opts.NameColumn)
	if err != nil {
		return nil, err
	}
	brandIdx, err := lookup(opts.BrandColumn)
	if err != nil {
		return nil, err
	}
	typeIdx, err := lookup(opts.TypeColumn)
	if err != nil {
		return nil, err
	}

	var rows []domain.CatalogRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrInvalidCatalog, line, err)
		}
		if isBlank(record) {
			continue
		}

		rows = append(rows, domain.CatalogRow{
			Name:           field(record, nameIdx),
			Brand:          field(record, brandIdx),
			Type:           field(record, typeIdx),
			RawIngredients: field(record, ingredientsIdx),
		})
	}

	return rows, nil
}

// field returns a cell, or "" when the record is short
func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
