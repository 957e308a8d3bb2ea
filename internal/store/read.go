package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/vitrine/internal/catalog"
	"github.com/roach88/vitrine/internal/queryir"
	"github.com/roach88/vitrine/internal/querysql"
)

// ListProducts returns one page of listable products matching params and
// the total number of matches. Page and count run on the same connection
// and share one compiled filter.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) ListProducts(ctx context.Context, params catalog.ListParams) ([]catalog.Product, int, error) {
	list, count, err := s.compiler.CompileListing(params)
	if err != nil {
		return nil, 0, fmt.Errorf("compile listing: %w", err)
	}

	var (
		products []catalog.Product
		total    int
	)
	err = s.withConn(ctx, func(conn *sql.Conn) error {
		if err := conn.QueryRowContext(ctx, count.SQL, count.Params...).Scan(&total); err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		products, err = queryProducts(ctx, conn, list)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Showcase returns up to limit featured products.
func (s *Store) Showcase(ctx context.Context, limit int) ([]catalog.Product, error) {
	return s.selectProducts(ctx, querysql.ShowcaseQuery(limit))
}

// HotCandidates returns up to limit listable products by descending sales.
func (s *Store) HotCandidates(ctx context.Context, limit int) ([]catalog.Product, error) {
	return s.selectProducts(ctx, querysql.HotCandidatesQuery(limit))
}

func (s *Store) selectProducts(ctx context.Context, q queryir.Query) ([]catalog.Product, error) {
	stmt, err := s.compiler.Compile(q)
	if err != nil {
		return nil, err
	}
	var products []catalog.Product
	err = s.withConn(ctx, func(conn *sql.Conn) error {
		products, err = queryProducts(ctx, conn, stmt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func queryProducts(ctx context.Context, conn *sql.Conn, stmt querysql.Statement) ([]catalog.Product, error) {
	rows, err := conn.QueryContext(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// CategorySummaries groups listable, categorized products by category,
// ordered by count descending then id. Name is the stored category name or
// empty; callers resolve missing names. Categories without listable
// products never appear.
func (s *Store) CategorySummaries(ctx context.Context) ([]catalog.CategorySummary, error) {
	where, params, err := s.compiler.CompileFilter(querysql.Products, querysql.CategorizedFilter())
	if err != nil {
		return nil, fmt.Errorf("compile category filter: %w", err)
	}
	query := `
		SELECT p.category_id, COALESCE(MAX(c.name), ''), COUNT(*) AS product_count
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE ` + where + `
		GROUP BY p.category_id
		ORDER BY product_count DESC, p.category_id ASC`

	summaries := []catalog.CategorySummary{}
	err = s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, params...)
		if err != nil {
			return fmt.Errorf("query categories: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var cs catalog.CategorySummary
			if err := rows.Scan(&cs.ID, &cs.Name, &cs.ProductCount); err != nil {
				return fmt.Errorf("scan category: %w", err)
			}
			summaries = append(summaries, cs)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate categories: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// CategoryCounts maps category id to its number of listable products.
// Categories without listable products are absent.
func (s *Store) CategoryCounts(ctx context.Context) (map[string]int, error) {
	where, params, err := s.compiler.CompileFilter(querysql.Products, querysql.CategorizedFilter())
	if err != nil {
		return nil, fmt.Errorf("compile category filter: %w", err)
	}
	query := `
		SELECT p.category_id, COUNT(*)
		FROM products p
		WHERE ` + where + `
		GROUP BY p.category_id`

	counts := map[string]int{}
	err = s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, params...)
		if err != nil {
			return fmt.Errorf("query category counts: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			var n int
			if err := rows.Scan(&id, &n); err != nil {
				return fmt.Errorf("scan category count: %w", err)
			}
			counts[id] = n
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate category counts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
