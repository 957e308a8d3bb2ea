package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/vitrine/internal/catalog"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testEpoch = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// createTestProduct creates a listable product with minimal fields.
func createTestProduct(shopeeID string, price float64, category string) catalog.Product {
	return catalog.Product{
		ShopeeID:   shopeeID,
		Name:       "Produto " + shopeeID,
		Price:      price,
		ImageURL:   "https://img.example/" + shopeeID + ".jpg",
		ShopName:   "Loja Teste",
		CategoryID: category,
		CreatedAt:  testEpoch,
	}
}

// seedProducts imports products and fails the test on error.
func seedProducts(t *testing.T, s *Store, products ...catalog.Product) {
	t.Helper()
	_, err := s.ImportProducts(context.Background(), products)
	require.NoError(t, err)
}

// seedCatalog writes a varied catalog used by the property tests:
// 30 products over three categories, a few unlistable rows.
func seedCatalog(t *testing.T, s *Store) []catalog.Product {
	t.Helper()
	categories := []string{"100001", "100630", "100010"}
	shops := []string{"Loja Azul", "Mercado Café", "Casa Bonita"}
	var products []catalog.Product
	for i := 0; i < 30; i++ {
		p := createTestProduct(fmt.Sprintf("sp-%02d", i), float64(10+i*7), categories[i%3])
		p.Name = fmt.Sprintf("Item %02d %s", i, []string{"Fone", "Batom", "Panela"}[i%3])
		p.ShopName = shops[(i/3)%3]
		p.Sales = int64((i * 37) % 500)
		p.RatingStar = float64(i%5) + 0.5
		products = append(products, p)
	}
	noImage := createTestProduct("no-image", 50, "100001")
	noImage.ImageURL = ""
	free := createTestProduct("free", 0, "100001")
	uncategorized := createTestProduct("loose", 55, "")
	products = append(products, noImage, free, uncategorized)

	seedProducts(t, s, products...)
	return products
}

func defaultParams() catalog.ListParams {
	return catalog.ListParams{}.Normalize()
}

func seedable(ids ...string) []catalog.Product {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, createTestProduct(id, 10, "100001"))
	}
	return out
}
