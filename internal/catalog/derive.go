package catalog

import (
	"strconv"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PriceFormatter renders an amount in a display currency.
type PriceFormatter interface {
	Format(amount float64) string
}

// DiscountPercent returns round(100 - price/original*100), never negative.
// It is 0 when original is absent or not above price.
func DiscountPercent(price float64, original *float64) int {
	if original == nil || *original <= 0 || *original <= price {
		return 0
	}
	ratio := decimal.NewFromFloat(price).Div(decimal.NewFromFloat(*original)).Mul(hundred)
	pct := hundred.Sub(ratio).Round(0)
	if pct.IsNegative() {
		return 0
	}
	return int(pct.IntPart())
}

// CommissionPercent converts a 0-1 rate to a percentage with one decimal.
func CommissionPercent(rate float64) float64 {
	f, _ := decimal.NewFromFloat(rate).Mul(hundred).Round(1).Float64()
	return f
}

// Derive fills the response-time fields of p. A nil formatter renders the
// price with two decimals and no currency.
func Derive(p *Product, f PriceFormatter) {
	p.DiscountPercent = DiscountPercent(p.Price, p.OriginalPrice)
	p.CommissionPercent = CommissionPercent(p.CommissionRate)
	if f != nil {
		p.FormattedPrice = f.Format(p.Price)
	} else {
		p.FormattedPrice = strconv.FormatFloat(p.Price, 'f', 2, 64)
	}
}

// DeriveAll applies Derive to every product in place.
func DeriveAll(products []Product, f PriceFormatter) {
	for i := range products {
		Derive(&products[i], f)
	}
}
