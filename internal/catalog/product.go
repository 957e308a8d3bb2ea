package catalog

import "time"

// Product is a listable marketplace offer.
type Product struct {
	ID                int64     `json:"id"`
	ShopeeID          string    `json:"shopee_id"`
	Name              string    `json:"product_name"`
	Price             float64   `json:"price"`
	OriginalPrice     *float64  `json:"original_price,omitempty"`
	ImageURL          string    `json:"image_url"`
	ShopName          string    `json:"shop_name"`
	ShopID            string    `json:"shop_id"`
	CommissionRate    float64   `json:"commission_rate"` // fraction, 0-1
	OfferLink         string    `json:"offer_link"`
	RatingStar        float64   `json:"rating_star"` // 0-5
	PriceDiscountRate float64   `json:"price_discount_rate"`
	Sales             int64     `json:"sales"`
	CategoryID        string    `json:"category_id,omitempty"`
	CategoryName      string    `json:"category_name,omitempty"`
	CreatedAt         time.Time `json:"created_at"`

	// Derived at response time.
	DiscountPercent   int     `json:"discount_percent"`
	FormattedPrice    string  `json:"formatted_price"`
	CommissionPercent float64 `json:"commission_percent"`
	HotScore          float64 `json:"hot_score,omitempty"`
}

// Listable reports whether p may appear in a listing: it needs an image
// and a positive price.
func (p Product) Listable() bool {
	return p.ImageURL != "" && p.Price > 0
}

// Category is a stored category row.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// CategorySummary is a category with its live listable product count.
type CategorySummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProductCount int    `json:"product_count"`
	ImageURL     string `json:"image_url"`
}
