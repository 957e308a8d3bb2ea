package testutil

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/vitrine/internal/catalog"
	"github.com/roach88/vitrine/internal/fixture"
	"github.com/roach88/vitrine/internal/store"
)

// NewStore opens an empty store in a temp dir, closed on cleanup.
func NewStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// NewSeededStore opens a temp store holding categories and products.
func NewSeededStore(t *testing.T, categories []catalog.Category, products []catalog.Product) *store.Store {
	t.Helper()
	s := NewStore(t)
	ctx := context.Background()
	_, err := s.ImportCategories(ctx, categories)
	require.NoError(t, err)
	_, err = s.ImportProducts(ctx, products)
	require.NoError(t, err)
	return s
}

// CatalogFixturePath is the absolute path of the shared sample catalog.
func CatalogFixturePath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "fixture", "testdata", "catalog.yaml")
}

// NewCatalogStore opens a temp store seeded with the sample catalog.
func NewCatalogStore(t *testing.T) *store.Store {
	t.Helper()
	f, err := fixture.Load(CatalogFixturePath())
	require.NoError(t, err)
	return NewSeededStore(t, f.Categories, f.CatalogProducts())
}
