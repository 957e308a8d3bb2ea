package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/vitrine/internal/catalog"
)

// timeLayouts are accepted created_at formats, newest writer first.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProduct reads one row in querysql.ProductColumns order. Rows come
// from an external importer, so every column is read as nullable.
func scanProduct(row rowScanner) (catalog.Product, error) {
	var p catalog.Product
	var shopeeID, name, imageURL, shopName, shopID sql.NullString
	var offerLink, categoryID, categoryName, created sql.NullString
	var price, originalPrice, commission, rating, discountRate sql.NullFloat64
	var sales sql.NullInt64

	err := row.Scan(
		&p.ID, &shopeeID, &name, &price, &originalPrice, &imageURL,
		&shopName, &shopID, &commission, &offerLink, &rating,
		&discountRate, &sales, &categoryID, &categoryName, &created,
	)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("scan product: %w", err)
	}

	p.ShopeeID = shopeeID.String
	p.Name = name.String
	p.Price = price.Float64
	if originalPrice.Valid {
		v := originalPrice.Float64
		p.OriginalPrice = &v
	}
	p.ImageURL = imageURL.String
	p.ShopName = shopName.String
	p.ShopID = shopID.String
	p.CommissionRate = commission.Float64
	p.OfferLink = offerLink.String
	p.RatingStar = rating.Float64
	p.PriceDiscountRate = discountRate.Float64
	p.Sales = sales.Int64
	p.CategoryID = categoryID.String
	p.CategoryName = categoryName.String
	p.CreatedAt = parseTime(created.String)

	return p, nil
}

// parseTime returns the zero time for values in no known layout.
func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
