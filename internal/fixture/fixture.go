// Package fixture loads catalog seed files written in YAML.
//
// A fixture looks like:
//
//	categories:
//	  - id: "100001"
//	    name: Saúde
//	products:
//	  - shopee_id: "2283"
//	    name: Termômetro digital
//	    price: 39.9
//	    original_price: 59.9
//	    image_url: https://img.example/2283.jpg
//	    category_id: "100001"
//	    created_at: 2024-05-01T10:00:00Z
package fixture

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/vitrine/internal/catalog"
)

// Fixture is a parsed seed file.
type Fixture struct {
	Categories []catalog.Category `yaml:"categories"`
	Products   []Product          `yaml:"products"`
}

// Product is one product entry of a seed file.
type Product struct {
	ShopeeID          string    `yaml:"shopee_id"`
	Name              string    `yaml:"name"`
	Price             float64   `yaml:"price"`
	OriginalPrice     *float64  `yaml:"original_price,omitempty"`
	ImageURL          string    `yaml:"image_url"`
	ShopName          string    `yaml:"shop_name"`
	ShopID            string    `yaml:"shop_id"`
	CommissionRate    float64   `yaml:"commission_rate"`
	OfferLink         string    `yaml:"offer_link"`
	RatingStar        float64   `yaml:"rating_star"`
	PriceDiscountRate float64   `yaml:"price_discount_rate"`
	Sales             int64     `yaml:"sales"`
	CategoryID        string    `yaml:"category_id"`
	CreatedAt         time.Time `yaml:"created_at"`
}

// Catalog converts the entry to a catalog.Product.
func (p Product) Catalog() catalog.Product {
	return catalog.Product{
		ShopeeID:          p.ShopeeID,
		Name:              p.Name,
		Price:             p.Price,
		OriginalPrice:     p.OriginalPrice,
		ImageURL:          p.ImageURL,
		ShopName:          p.ShopName,
		ShopID:            p.ShopID,
		CommissionRate:    p.CommissionRate,
		OfferLink:         p.OfferLink,
		RatingStar:        p.RatingStar,
		PriceDiscountRate: p.PriceDiscountRate,
		Sales:             p.Sales,
		CategoryID:        p.CategoryID,
		CreatedAt:         p.CreatedAt,
	}
}

// CatalogProducts converts every product entry.
func (f *Fixture) CatalogProducts() []catalog.Product {
	out := make([]catalog.Product, 0, len(f.Products))
	for _, p := range f.Products {
		out = append(out, p.Catalog())
	}
	return out
}

// Load reads and parses a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a fixture. Unknown fields are rejected so typos surface
// instead of silently seeding zero values.
func Parse(r io.Reader) (*Fixture, error) {
	var f Fixture
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		if err == io.EOF {
			return &Fixture{Categories: []catalog.Category{}, Products: []Product{}}, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

func validate(f *Fixture) error {
	seenCategories := make(map[string]bool, len(f.Categories))
	for i, c := range f.Categories {
		if c.ID == "" {
			return fmt.Errorf("categories[%d]: id is required", i)
		}
		if c.Name == "" {
			return fmt.Errorf("categories[%d]: name is required", i)
		}
		if seenCategories[c.ID] {
			return fmt.Errorf("categories[%d]: duplicate id %q", i, c.ID)
		}
		seenCategories[c.ID] = true
	}

	seenProducts := make(map[string]bool, len(f.Products))
	for i, p := range f.Products {
		switch {
		case p.ShopeeID == "":
			return fmt.Errorf("products[%d]: shopee_id is required", i)
		case seenProducts[p.ShopeeID]:
			return fmt.Errorf("products[%d]: duplicate shopee_id %q", i, p.ShopeeID)
		case p.Name == "":
			return fmt.Errorf("products[%d]: name is required", i)
		case p.Price < 0:
			return fmt.Errorf("products[%d]: negative price %v", i, p.Price)
		case p.OriginalPrice != nil && *p.OriginalPrice < 0:
			return fmt.Errorf("products[%d]: negative original_price %v", i, *p.OriginalPrice)
		case p.CommissionRate < 0 || p.CommissionRate > 1:
			return fmt.Errorf("products[%d]: commission_rate %v outside 0-1", i, p.CommissionRate)
		case p.RatingStar < 0 || p.RatingStar > 5:
			return fmt.Errorf("products[%d]: rating_star %v outside 0-5", i, p.RatingStar)
		case p.Sales < 0:
			return fmt.Errorf("products[%d]: negative sales %d", i, p.Sales)
		}
		seenProducts[p.ShopeeID] = true
	}
	return nil
}
