package fixture

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	f, err := Load("testdata/catalog.yaml")
	require.NoError(t, err)

	assert.Len(t, f.Categories, 4)
	require.Len(t, f.Products, 7)

	first := f.Products[0].Catalog()
	assert.Equal(t, "22831001", first.ShopeeID)
	assert.Equal(t, 39.9, first.Price)
	require.NotNil(t, first.OriginalPrice)
	assert.Equal(t, 79.9, *first.OriginalPrice)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), first.CreatedAt.UTC())

	assert.Nil(t, f.Products[1].OriginalPrice)
	assert.Empty(t, f.Products[6].ImageURL)
	assert.Len(t, f.CatalogProducts(), 7)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read fixture file")
}

func TestParse_Empty(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Products)
	assert.Empty(t, f.Categories)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("products:\n  - shopee_id: a\n    name: x\n    prise: 10\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"category without id", "categories:\n  - name: x\n", "id is required"},
		{"category without name", "categories:\n  - id: \"1\"\n", "name is required"},
		{"duplicate category", "categories:\n  - {id: \"1\", name: a}\n  - {id: \"1\", name: b}\n", "duplicate id"},
		{"product without id", "products:\n  - name: x\n", "shopee_id is required"},
		{"duplicate product", "products:\n  - {shopee_id: a, name: x}\n  - {shopee_id: a, name: y}\n", "duplicate shopee_id"},
		{"product without name", "products:\n  - shopee_id: a\n", "name is required"},
		{"negative price", "products:\n  - {shopee_id: a, name: x, price: -1}\n", "negative price"},
		{"commission above one", "products:\n  - {shopee_id: a, name: x, commission_rate: 12}\n", "commission_rate"},
		{"rating above five", "products:\n  - {shopee_id: a, name: x, rating_star: 5.5}\n", "rating_star"},
		{"negative sales", "products:\n  - {shopee_id: a, name: x, sales: -3}\n", "negative sales"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
