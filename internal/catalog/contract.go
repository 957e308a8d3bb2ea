package catalog

import "time"

// APIBase is the prefix under which every route is also served.
const APIBase = "/api"

// ProductPage is the body of GET /products.
type ProductPage struct {
	Products    []Product `json:"products"`
	Total       int       `json:"total"`
	Page        int       `json:"page"`
	Limit       int       `json:"limit"`
	TotalPages  int       `json:"total_pages"`
	HasNext     bool      `json:"has_next"`
	HasPrevious bool      `json:"has_previous"`
}

// NewProductPage fills the pagination metadata for a page of results.
func NewProductPage(products []Product, total, page, limit int) ProductPage {
	if products == nil {
		products = []Product{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return ProductPage{
		Products:    products,
		Total:       total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// Showcase is the body of GET /products/showcase.
type Showcase struct {
	Products  []Product `json:"products"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// HotProducts is the body of GET /products/hot.
type HotProducts struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
	MinSales int64     `json:"min_sales"`
}

// CategoryCounts is the body of GET /categories/counts.
type CategoryCounts struct {
	Counts map[string]int `json:"counts"`
}

// Health status values.
const (
	StatusOK    = "ok"
	StatusError = "error"

	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
)

// HealthReport is the body of GET /health.
type HealthReport struct {
	Status         string    `json:"status"`
	DatabaseStatus string    `json:"database_status"`
	DatabaseError  string    `json:"database_error,omitempty"`
	APIBase        string    `json:"api_base"`
	Timestamp      time.Time `json:"timestamp"`
	Environment    string    `json:"environment"`
}

// Healthy reports whether the store answered the probe.
func (h HealthReport) Healthy() bool {
	return h.DatabaseStatus == DatabaseConnected
}

// TableInfo describes one table in the store.
type TableInfo struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// SampleProduct is a trimmed product used in diagnostics.
type SampleProduct struct {
	ID    int64   `json:"id"`
	Name  string  `json:"product_name"`
	Price float64 `json:"price"`
}

// Diagnostics is what the store reports about itself.
type Diagnostics struct {
	Tables         []TableInfo     `json:"tables"`
	ProductCount   int             `json:"product_count"`
	CategoryCount  int             `json:"category_count"`
	SampleProducts []SampleProduct `json:"sample_products"`
}

// DatabaseReport is the body of GET /debug/database.
type DatabaseReport struct {
	DatabasePath   string `json:"database_path"`
	DatabaseExists bool   `json:"database_exists"`
	APIBase        string `json:"api_base"`
	Diagnostics
	Error string `json:"error,omitempty"`
}

// ErrorBody is the JSON body of every non-2xx response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
