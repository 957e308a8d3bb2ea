package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vitrine/internal/catalog"
)

func TestImportProducts_Upsert(t *testing.T) {
	s := createTestStore(t)
	p := createTestProduct("a", 10, "100001")
	seedProducts(t, s, p)

	first, _, err := s.ListProducts(context.Background(), defaultParams())
	require.NoError(t, err)
	require.Len(t, first, 1)

	p.Price = 12.5
	original := 20.0
	p.OriginalPrice = &original
	n, err := s.ImportProducts(context.Background(), []catalog.Product{p})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	second, total, err := s.ListProducts(context.Background(), defaultParams())
	require.NoError(t, err)
	assert.Equal(t, 1, total, "upsert must not duplicate")
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID, "upsert keeps the row id")
	assert.Equal(t, 12.5, second[0].Price)
	require.NotNil(t, second[0].OriginalPrice)
	assert.Equal(t, 20.0, *second[0].OriginalPrice)
}

func TestImportProducts_StampsMissingCreatedAt(t *testing.T) {
	s := createTestStore(t)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	p := createTestProduct("a", 10, "100001")
	p.CreatedAt = time.Time{}
	seedProducts(t, s, p)

	products, _, err := s.ListProducts(context.Background(), defaultParams())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, fixed, products[0].CreatedAt)
}

func TestImportProducts_EmptyFieldsStoredAsNull(t *testing.T) {
	s := createTestStore(t)
	p := createTestProduct("a", 10, "")
	p.ImageURL = ""
	seedProducts(t, s, p)

	var nullImage, nullCategory bool
	err := s.DB().QueryRow(`SELECT image_url IS NULL, category_id IS NULL FROM products`).Scan(&nullImage, &nullCategory)
	require.NoError(t, err)
	assert.True(t, nullImage)
	assert.True(t, nullCategory)
}

func TestImportProducts_RollsBackOnError(t *testing.T) {
	s := createTestStore(t)
	good := createTestProduct("a", 10, "100001")
	dup := createTestProduct("a", 10, "100001")

	// The same shopee_id twice is a valid upsert; force a failure with a
	// cancelled context instead.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ImportProducts(ctx, []catalog.Product{good, dup})
	require.Error(t, err)

	_, total, err := s.ListProducts(context.Background(), defaultParams())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestImportCategories(t *testing.T) {
	s := createTestStore(t)
	n, err := s.ImportCategories(context.Background(), []catalog.Category{
		{ID: "100001", Name: "Saúde"},
		{ID: "100001", Name: "Saúde e Bem-estar"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var name string
	require.NoError(t, s.DB().QueryRow(`SELECT name FROM categories WHERE id = ?`, "100001").Scan(&name))
	assert.Equal(t, "Saúde e Bem-estar", name)
}
