package client

import (
	"sort"
	"strings"
	"time"

	"github.com/roach88/vitrine/internal/catalog"
)

// Dataset is the sample catalog served while the service is unreachable.
// It is a fixed substitute, never a copy of live data.
type Dataset struct {
	taxonomy catalog.Taxonomy
	products []catalog.Product
}

// NewDataset derives display fields for products and keeps them in
// relevance order. Unlistable products are dropped.
func NewDataset(products []catalog.Product, taxonomy catalog.Taxonomy, prices catalog.PriceFormatter) *Dataset {
	if taxonomy == nil {
		taxonomy = catalog.DefaultTaxonomy
	}
	kept := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if !p.Listable() {
			continue
		}
		if p.CategoryID != "" && p.CategoryName == "" {
			p.CategoryName = taxonomy.Resolve(p.CategoryID, "")
		}
		catalog.Derive(&p, prices)
		kept = append(kept, p)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Sales != kept[j].Sales {
			return kept[i].Sales > kept[j].Sales
		}
		if kept[i].RatingStar != kept[j].RatingStar {
			return kept[i].RatingStar > kept[j].RatingStar
		}
		return kept[i].ID < kept[j].ID
	})
	return &Dataset{taxonomy: taxonomy, products: kept}
}

func (d *Dataset) copyProducts(filter func(catalog.Product) bool) []catalog.Product {
	out := []catalog.Product{}
	for _, p := range d.products {
		if filter == nil || filter(p) {
			out = append(out, p)
		}
	}
	return out
}

// Products filters by category, price range and search term, sorts like
// the service, then paginates.
func (d *Dataset) Products(params catalog.ListParams) catalog.ProductPage {
	params = params.Normalize()
	term := strings.ToLower(params.Search)
	matches := d.copyProducts(func(p catalog.Product) bool {
		if params.Category != "" && p.CategoryID != params.Category {
			return false
		}
		if !params.PriceRange.Contains(p.Price) {
			return false
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.ShopName), term) {
			return false
		}
		return true
	})

	sortProducts(matches, params.Sort)

	total := len(matches)
	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)
	return catalog.NewProductPage(matches[start:end], total, params.Page, params.Limit)
}

// sortProducts orders products already in relevance order. Ties keep
// relevance order.
func sortProducts(products []catalog.Product, order catalog.SortOrder) {
	var less func(a, b catalog.Product) bool
	switch order {
	case catalog.SortPriceAsc:
		less = func(a, b catalog.Product) bool { return a.Price < b.Price }
	case catalog.SortPriceDesc:
		less = func(a, b catalog.Product) bool { return a.Price > b.Price }
	case catalog.SortNameAsc:
		less = func(a, b catalog.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case catalog.SortNameDesc:
		less = func(a, b catalog.Product) bool { return strings.ToLower(a.Name) > strings.ToLower(b.Name) }
	default:
		return
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

// Showcase returns up to limit products: deep discounts first, then best
// sellers, then the rest.
func (d *Dataset) Showcase(limit int, now time.Time) catalog.Showcase {
	products := d.copyProducts(nil)
	sort.SliceStable(products, func(i, j int) bool {
		return showcaseTier(products[i]) < showcaseTier(products[j])
	})
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return catalog.Showcase{Products: products, Count: len(products), Timestamp: now.UTC()}
}

func showcaseTier(p catalog.Product) int {
	switch {
	case p.PriceDiscountRate >= 50:
		return 1
	case p.Sales >= 1000:
		return 2
	default:
		return 3
	}
}

// Hot ranks the sample products like the service does.
func (d *Dataset) Hot(limit int, minSales int64) catalog.HotProducts {
	if minSales < 0 {
		minSales = catalog.DefaultHotMinSales
	}
	ranked := catalog.RankHot(d.products, minSales, catalog.DefaultHotWeights)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return catalog.HotProducts{Products: ranked, Count: len(ranked), MinSales: minSales}
}

// Categories summarizes the sample products by category, most populated
// first.
func (d *Dataset) Categories() []catalog.CategorySummary {
	counts := d.Counts().Counts
	out := make([]catalog.CategorySummary, 0, len(counts))
	for id, n := range counts {
		name := d.taxonomy.Resolve(id, "")
		out = append(out, catalog.CategorySummary{
			ID:           id,
			Name:         name,
			ProductCount: n,
			ImageURL:     catalog.PlaceholderImage(name),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductCount != out[j].ProductCount {
			return out[i].ProductCount > out[j].ProductCount
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Counts maps category id to its number of sample products.
func (d *Dataset) Counts() catalog.CategoryCounts {
	counts := map[string]int{}
	for _, p := range d.products {
		if p.CategoryID != "" {
			counts[p.CategoryID]++
		}
	}
	return catalog.CategoryCounts{Counts: counts}
}

func price(v float64) *float64 { return &v }

// sampleProducts is the built-in fallback catalog.
var sampleProducts = []catalog.Product{
	{
		ID: 1, ShopeeID: "fallback-1", Name: "Fone de Ouvido Bluetooth",
		Price: 79.9, OriginalPrice: price(159.9),
		ImageURL: "https://via.placeholder.com/300?text=Fone", ShopName: "Loja Exemplo", ShopID: "0",
		CommissionRate: 0.08, OfferLink: "https://shopee.com.br/", RatingStar: 4.6,
		PriceDiscountRate: 50, Sales: 2400, CategoryID: "100006",
	},
	{
		ID: 2, ShopeeID: "fallback-2", Name: "Carregador Turbo USB-C",
		Price: 49.9,
		ImageURL: "https://via.placeholder.com/300?text=Carregador", ShopName: "Loja Exemplo", ShopID: "0",
		CommissionRate: 0.06, OfferLink: "https://shopee.com.br/", RatingStar: 4.4,
		Sales: 1300, CategoryID: "100006",
	},
	{
		ID: 3, ShopeeID: "fallback-3", Name: "Sérum Facial Vitamina C",
		Price: 59.9, OriginalPrice: price(89.9),
		ImageURL: "https://via.placeholder.com/300?text=Serum", ShopName: "Beleza Exemplo", ShopID: "0",
		CommissionRate: 0.12, OfferLink: "https://shopee.com.br/", RatingStar: 4.8,
		PriceDiscountRate: 33, Sales: 870, CategoryID: "100630",
	},
	{
		ID: 4, ShopeeID: "fallback-4", Name: "Kit Pincéis de Maquiagem",
		Price: 34.9, OriginalPrice: price(69.9),
		ImageURL: "https://via.placeholder.com/300?text=Pinceis", ShopName: "Beleza Exemplo", ShopID: "0",
		CommissionRate: 0.1, OfferLink: "https://shopee.com.br/", RatingStar: 4.5,
		PriceDiscountRate: 50, Sales: 520, CategoryID: "100630",
	},
	{
		ID: 5, ShopeeID: "fallback-5", Name: "Organizador de Gaveta",
		Price: 29.9,
		ImageURL: "https://via.placeholder.com/300?text=Organizador", ShopName: "Casa Exemplo", ShopID: "0",
		CommissionRate: 0.07, OfferLink: "https://shopee.com.br/", RatingStar: 4.3,
		Sales: 310, CategoryID: "100010",
	},
	{
		ID: 6, ShopeeID: "fallback-6", Name: "Garrafa Térmica 1L",
		Price: 64.9, OriginalPrice: price(79.9),
		ImageURL: "https://via.placeholder.com/300?text=Garrafa", ShopName: "Casa Exemplo", ShopID: "0",
		CommissionRate: 0.05, OfferLink: "https://shopee.com.br/", RatingStar: 4.7,
		PriceDiscountRate: 19, Sales: 1100, CategoryID: "100010",
	},
	{
		ID: 7, ShopeeID: "fallback-7", Name: "Termômetro Digital",
		Price: 24.9,
		ImageURL: "https://via.placeholder.com/300?text=Termometro", ShopName: "Saúde Exemplo", ShopID: "0",
		CommissionRate: 0.09, OfferLink: "https://shopee.com.br/", RatingStar: 4.2,
		Sales: 640, CategoryID: "100001",
	},
	{
		ID: 8, ShopeeID: "fallback-8", Name: "Escova Dental Elétrica",
		Price: 119.0, OriginalPrice: price(199.0),
		ImageURL: "https://via.placeholder.com/300?text=Escova", ShopName: "Saúde Exemplo", ShopID: "0",
		CommissionRate: 0.11, OfferLink: "https://shopee.com.br/", RatingStar: 4.9,
		PriceDiscountRate: 40, Sales: 450, CategoryID: "100001",
	},
}

// DefaultDataset returns the built-in sample catalog with prices rendered
// by prices.
func DefaultDataset(prices catalog.PriceFormatter) *Dataset {
	return NewDataset(sampleProducts, catalog.DefaultTaxonomy, prices)
}
