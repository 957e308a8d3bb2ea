package querysql

import (
	"github.com/roach88/vitrine/internal/catalog"
	"github.com/roach88/vitrine/internal/queryir"
)

// Table sources used by every product query.
var (
	Products   = queryir.Source{Table: "products", Alias: "p"}
	Categories = queryir.Source{Table: "categories", Alias: "c"}
)

// Schema is the column whitelist for the store.
var Schema = queryir.NewSchema(map[string][]string{
	"products": {
		"id", "shopee_id", "name", "price", "original_price", "image_url",
		"shop_name", "shop_id", "commission_rate", "offer_link", "rating_star",
		"price_discount_rate", "sales", "category_id", "created_at",
	},
	"categories": {"id", "name"},
})

// ProductColumns is the select list of every product query. Scanners read
// columns in exactly this order.
var ProductColumns = []queryir.Column{
	{Field: "p.id"},
	{Field: "p.shopee_id"},
	{Field: "p.name"},
	{Field: "p.price"},
	{Field: "p.original_price"},
	{Field: "p.image_url"},
	{Field: "p.shop_name"},
	{Field: "p.shop_id"},
	{Field: "p.commission_rate"},
	{Field: "p.offer_link"},
	{Field: "p.rating_star"},
	{Field: "p.price_discount_rate"},
	{Field: "p.sales"},
	{Field: "p.category_id"},
	{Field: "c.name", As: "category_name"},
	{Field: "p.created_at"},
}

var categoryJoin = &queryir.LeftJoin{
	Source:      Categories,
	Field:       "c.id",
	ParentField: "p.category_id",
}

// Showcase tier thresholds.
const (
	ShowcaseDiscountTier = 50.0
	ShowcaseSalesTier    = 1000
)

// ListableFilter admits products that have an image and a positive price.
func ListableFilter() queryir.Predicate {
	return queryir.And{Predicates: []queryir.Predicate{
		queryir.NotBlank{Field: "p.image_url"},
		queryir.GreaterThan{Field: "p.price", Value: 0},
	}}
}

// CategorizedFilter admits listable products that carry a category id.
func CategorizedFilter() queryir.Predicate {
	return queryir.Conjoin(ListableFilter(), queryir.NotBlank{Field: "p.category_id"})
}

// ListingFilter is the WHERE predicate for a product listing. The list and
// count queries both use the value returned here.
func ListingFilter(params catalog.ListParams) queryir.Predicate {
	params = params.Normalize()
	preds := []queryir.Predicate{ListableFilter()}

	if params.Category != "" {
		preds = append(preds, queryir.Equals{Field: "p.category_id", Value: params.Category})
	}
	if r := params.PriceRange; r.Set {
		if r.HasMax {
			preds = append(preds, queryir.Between{Field: "p.price", Low: r.Min, High: r.Max})
		} else {
			preds = append(preds, queryir.AtLeast{Field: "p.price", Value: r.Min})
		}
	}
	if params.Search != "" {
		preds = append(preds, queryir.Contains{
			Fields: []string{"p.name", "p.shop_name"},
			Term:   params.Search,
		})
	}
	return queryir.And{Predicates: preds}
}

// SortTerms maps a sort order to ORDER BY terms.
func SortTerms(s catalog.SortOrder) []queryir.Order {
	switch s {
	case catalog.SortPriceAsc:
		return []queryir.Order{{Field: "p.price"}}
	case catalog.SortPriceDesc:
		return []queryir.Order{{Field: "p.price", Desc: true}}
	case catalog.SortNameAsc:
		return []queryir.Order{{Field: "p.name", NoCase: true}}
	case catalog.SortNameDesc:
		return []queryir.Order{{Field: "p.name", NoCase: true, Desc: true}}
	default:
		return []queryir.Order{
			{Field: "p.sales", Desc: true},
			{Field: "p.rating_star", Desc: true},
		}
	}
}

// ListingQueries builds the page query and its count query from one
// filter value.
func ListingQueries(params catalog.ListParams) (queryir.Select, queryir.Count) {
	params = params.Normalize()
	filter := ListingFilter(params)

	list := queryir.Select{
		From:    Products,
		Join:    categoryJoin,
		Columns: ProductColumns,
		Filter:  filter,
		OrderBy: SortTerms(params.Sort),
		Limit:   params.Limit,
		Offset:  params.Offset(),
	}
	count := queryir.Count{From: Products, Filter: filter}
	return list, count
}

// CompileListing compiles the page and count statements for params.
func (c *SQLCompiler) CompileListing(params catalog.ListParams) (list, count Statement, err error) {
	listQ, countQ := ListingQueries(params)
	if list, err = c.Compile(listQ); err != nil {
		return Statement{}, Statement{}, err
	}
	if count, err = c.Compile(countQ); err != nil {
		return Statement{}, Statement{}, err
	}
	return list, count, nil
}

// ShowcaseQuery selects featured products: deep discounts first, then
// best sellers, then everything else by sales and rating.
func ShowcaseQuery(limit int) queryir.Select {
	return queryir.Select{
		From:    Products,
		Join:    categoryJoin,
		Columns: ProductColumns,
		Filter:  ListableFilter(),
		OrderBy: []queryir.Order{
			{Tiers: []queryir.Predicate{
				queryir.AtLeast{Field: "p.price_discount_rate", Value: ShowcaseDiscountTier},
				queryir.AtLeast{Field: "p.sales", Value: ShowcaseSalesTier},
			}},
			{Field: "p.sales", Desc: true},
			{Field: "p.rating_star", Desc: true},
		},
		Limit: limit,
	}
}

// HotCandidatesQuery selects up to limit listable products by sales for
// hot scoring.
func HotCandidatesQuery(limit int) queryir.Select {
	return queryir.Select{
		From:    Products,
		Join:    categoryJoin,
		Columns: ProductColumns,
		Filter:  ListableFilter(),
		OrderBy: []queryir.Order{{Field: "p.sales", Desc: true}},
		Limit:   limit,
	}
}
