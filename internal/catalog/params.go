package catalog

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	DefaultShowcaseLimit = 12
	MaxShowcaseLimit     = 50

	DefaultHotLimit    = 20
	DefaultHotMinSales = 50
)

// SortOrder selects the ordering of a product listing.
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortNameAsc   SortOrder = "name_asc"
	SortNameDesc  SortOrder = "name_desc"
)

// ValidSortOrders lists every accepted sort value.
var ValidSortOrders = map[SortOrder]bool{
	SortRelevance: true,
	SortPriceAsc:  true,
	SortPriceDesc: true,
	SortNameAsc:   true,
	SortNameDesc:  true,
}

// ParseSortOrder maps a raw query value to a SortOrder. Unknown or empty
// values fall back to SortRelevance.
func ParseSortOrder(raw string) SortOrder {
	s := SortOrder(strings.ToLower(strings.TrimSpace(raw)))
	if ValidSortOrders[s] {
		return s
	}
	return SortRelevance
}

// PriceRange is an inclusive price filter. The zero value means no filter.
type PriceRange struct {
	Min    float64
	Max    float64
	HasMax bool
	Set    bool
}

// ParsePriceRange parses "min-max" or "min+". Anything else, including
// negative bounds and min > max, yields the zero PriceRange.
func ParsePriceRange(raw string) PriceRange {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PriceRange{}
	}

	if strings.HasSuffix(raw, "+") {
		lo, ok := parseBound(strings.TrimSuffix(raw, "+"))
		if !ok {
			return PriceRange{}
		}
		return PriceRange{Min: lo, Set: true}
	}

	loRaw, hiRaw, found := strings.Cut(raw, "-")
	if !found {
		return PriceRange{}
	}
	lo, ok := parseBound(loRaw)
	if !ok {
		return PriceRange{}
	}
	hi, ok := parseBound(hiRaw)
	if !ok || lo > hi {
		return PriceRange{}
	}
	return PriceRange{Min: lo, Max: hi, HasMax: true, Set: true}
}

func parseBound(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// String renders the range back into its query form.
func (r PriceRange) String() string {
	if !r.Set {
		return ""
	}
	lo := strconv.FormatFloat(r.Min, 'f', -1, 64)
	if !r.HasMax {
		return lo + "+"
	}
	return lo + "-" + strconv.FormatFloat(r.Max, 'f', -1, 64)
}

// Contains reports whether price falls inside the range. An unset range
// contains every price.
func (r PriceRange) Contains(price float64) bool {
	if !r.Set {
		return true
	}
	if price < r.Min {
		return false
	}
	return !r.HasMax || price <= r.Max
}

// ListParams are the normalized inputs of a product listing.
type ListParams struct {
	Category   string
	Page       int
	Limit      int
	Sort       SortOrder
	PriceRange PriceRange
	Search     string
}

// Normalize clamps pagination and fills defaults. It is idempotent.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if !ValidSortOrders[p.Sort] {
		p.Sort = SortRelevance
	}
	p.Category = strings.TrimSpace(p.Category)
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// Offset is the number of rows skipped before the current page.
func (p ListParams) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// ParseListParams reads listing parameters from a query string. Malformed
// values are dropped rather than reported.
func ParseListParams(q url.Values) ListParams {
	return ListParams{
		Category:   q.Get("category"),
		Page:       atoiOr(q.Get("page"), DefaultPage),
		Limit:      atoiOr(q.Get("limit"), DefaultLimit),
		Sort:       ParseSortOrder(q.Get("sort")),
		PriceRange: ParsePriceRange(q.Get("price_range")),
		Search:     q.Get("search"),
	}.Normalize()
}

// Query encodes p as query parameters understood by ParseListParams.
// Defaults are omitted.
func (p ListParams) Query() url.Values {
	p = p.Normalize()
	q := url.Values{}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Page != DefaultPage {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit != DefaultLimit {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Sort != SortRelevance {
		q.Set("sort", string(p.Sort))
	}
	if p.PriceRange.Set {
		q.Set("price_range", p.PriceRange.String())
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

// ClampLimit returns def when raw is missing or malformed and caps the
// result at ceiling.
func ClampLimit(raw string, def, ceiling int) int {
	n := atoiOr(raw, def)
	if n < 1 {
		n = def
	}
	if n > ceiling {
		n = ceiling
	}
	return n
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
