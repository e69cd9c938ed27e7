package registryfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skinmatch/backend/internal/domain"
)

func TestDecode(t *testing.T) {
	t.Run("parses categories in order", func(t *testing.T) {
		input := `
categories:
  - name: hyaluronic
    keywords: [hyaluronic acid, sodium hyaluronate]
  - name: fragrance
    keywords:
      - parfum
      - Fragrance
`
		categories, err := Decode(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, categories, 2)

		assert.Equal(t, domain.Category{
			Name:     "hyaluronic",
			Keywords: []string{"hyaluronic acid", "sodium hyaluronate"},
		}, categories[0])
		// Normalization is the registry's job, not the loader's
		assert.Equal(t, []string{"parfum", "Fragrance"}, categories[1].Keywords)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		input := "categories:\n  - name: x\n    keyword: [a]\n"
		_, err := Decode(strings.NewReader(input))
		assert.ErrorIs(t, err, domain.ErrInvalidRegistry)
	})

	t.Run("rejects empty document", func(t *testing.T) {
		_, err := Decode(strings.NewReader(""))
		assert.ErrorIs(t, err, domain.ErrInvalidRegistry)
	})

	t.Run("rejects document without categories", func(t *testing.T) {
		_, err := Decode(strings.NewReader("categories: []\n"))
		assert.ErrorIs(t, err, domain.ErrInvalidRegistry)
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "categories.yaml")
		require.NoError(t, os.WriteFile(path, []byte("categories:\n  - name: a\n    keywords: [b]\n"), 0o600))

		categories, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, categories, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
