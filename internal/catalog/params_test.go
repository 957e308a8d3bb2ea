package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want PriceRange
	}{
		{"closed range", "50-100", PriceRange{Min: 50, Max: 100, HasMax: true, Set: true}},
		{"decimal bounds", "9.90-19.90", PriceRange{Min: 9.9, Max: 19.9, HasMax: true, Set: true}},
		{"open range", "200+", PriceRange{Min: 200, Set: true}},
		{"equal bounds", "30-30", PriceRange{Min: 30, Max: 30, HasMax: true, Set: true}},
		{"padded", " 10 - 20 ", PriceRange{Min: 10, Max: 20, HasMax: true, Set: true}},
		{"empty", "", PriceRange{}},
		{"inverted", "100-50", PriceRange{}},
		{"missing max", "50-", PriceRange{}},
		{"missing min", "-50", PriceRange{}},
		{"garbage", "cheap", PriceRange{}},
		{"plus without number", "+", PriceRange{}},
		{"nan", "NaN-10", PriceRange{}},
		{"infinite", "10-Inf", PriceRange{}},
		{"three parts", "1-2-3", PriceRange{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePriceRange(tt.raw))
		})
	}
}

func TestPriceRangeContains(t *testing.T) {
	closed := ParsePriceRange("50-100")
	assert.True(t, closed.Contains(50))
	assert.True(t, closed.Contains(100))
	assert.False(t, closed.Contains(49.99))
	assert.False(t, closed.Contains(100.01))

	open := ParsePriceRange("50+")
	assert.True(t, open.Contains(5000))
	assert.False(t, open.Contains(10))

	assert.True(t, PriceRange{}.Contains(0))
}

func TestPriceRangeString(t *testing.T) {
	assert.Equal(t, "50-100", ParsePriceRange("50-100").String())
	assert.Equal(t, "9.9+", ParsePriceRange("9.90+").String())
	assert.Equal(t, "", PriceRange{}.String())
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortPriceAsc, ParseSortOrder("price_asc"))
	assert.Equal(t, SortNameDesc, ParseSortOrder(" NAME_DESC "))
	assert.Equal(t, SortRelevance, ParseSortOrder(""))
	assert.Equal(t, SortRelevance, ParseSortOrder("newest"))
}

func TestListParamsNormalize(t *testing.T) {
	p := ListParams{Page: -3, Limit: 500, Sort: "bogus", Category: " 100001 "}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, SortRelevance, p.Sort)
	assert.Equal(t, "100001", p.Category)

	assert.Equal(t, p, p.Normalize(), "normalize must be idempotent")
}

func TestListParamsOffset(t *testing.T) {
	assert.Equal(t, 0, ListParams{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, ListParams{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, 10, ListParams{Page: 2, Limit: 10}.Offset())
}

func TestParseListParams(t *testing.T) {
	q := url.Values{}
	q.Set("category", "100001")
	q.Set("page", "2")
	q.Set("limit", "abc")
	q.Set("sort", "price_desc")
	q.Set("price_range", "10-x")
	q.Set("search", "  fone  ")

	p := ParseListParams(q)
	assert.Equal(t, "100001", p.Category)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, SortPriceDesc, p.Sort)
	assert.False(t, p.PriceRange.Set)
	assert.Equal(t, "fone", p.Search)
}

func TestListParamsQueryRoundTrip(t *testing.T) {
	in := ListParams{
		Category:   "100630",
		Page:       3,
		Limit:      15,
		Sort:       SortNameAsc,
		PriceRange: ParsePriceRange("20-80"),
		Search:     "batom",
	}.Normalize()

	assert.Equal(t, in, ParseListParams(in.Query()))
	assert.Empty(t, ListParams{}.Query(), "defaults are omitted")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 12, ClampLimit("", 12, 50))
	assert.Equal(t, 12, ClampLimit("0", 12, 50))
	assert.Equal(t, 5, ClampLimit("5", 12, 50))
	assert.Equal(t, 50, ClampLimit("999", 12, 50))
}
