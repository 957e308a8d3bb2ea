package catalog

import (
	"sort"

	"github.com/shopspring/decimal"
)

// HotWeights configures the hot product score.
//
// score = Sales*sales_norm + Commission*commission_norm + Value*value_norm
// value_norm = Discount*discount_norm + Rating*rating_norm
//
// Every *_norm divides by the maximum over all scored products.
type HotWeights struct {
	Sales      float64
	Commission float64
	Value      float64
	Discount   float64
	Rating     float64
}

// DefaultHotWeights favours sales volume.
var DefaultHotWeights = HotWeights{
	Sales:      0.6,
	Commission: 0.2,
	Value:      0.2,
	Discount:   0.7,
	Rating:     0.3,
}

// RankHot scores products with at least minSales sales and returns them
// ordered by descending HotScore, then ascending ID. Normalization maxima
// are taken over the whole input, including products below minSales.
// The input slice is not modified.
func RankHot(products []Product, minSales int64, w HotWeights) []Product {
	ranked := make([]Product, 0, len(products))
	if len(products) == 0 {
		return ranked
	}

	var maxSales int64
	var maxCommission, maxDiscount, maxRating float64
	for _, p := range products {
		if p.Sales > maxSales {
			maxSales = p.Sales
		}
		if p.CommissionRate > maxCommission {
			maxCommission = p.CommissionRate
		}
		if p.PriceDiscountRate > maxDiscount {
			maxDiscount = p.PriceDiscountRate
		}
		if p.RatingStar > maxRating {
			maxRating = p.RatingStar
		}
	}
	if maxSales == 0 {
		maxSales = 1
	}
	if maxCommission == 0 {
		maxCommission = 0.01
	}
	if maxDiscount == 0 {
		maxDiscount = 1
	}
	if maxRating == 0 {
		maxRating = 5
	}

	for _, p := range products {
		if p.Sales < minSales {
			continue
		}
		value := w.Discount*(p.PriceDiscountRate/maxDiscount) + w.Rating*(p.RatingStar/maxRating)
		score := w.Sales*(float64(p.Sales)/float64(maxSales)) +
			w.Commission*(p.CommissionRate/maxCommission) +
			w.Value*value
		p.HotScore, _ = decimal.NewFromFloat(score).Mul(hundred).Round(2).Float64()
		ranked = append(ranked, p)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].HotScore != ranked[j].HotScore {
			return ranked[i].HotScore > ranked[j].HotScore
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}
