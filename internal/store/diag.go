package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/vitrine/internal/catalog"
)

// Diagnostics lists user tables with their row counts and a few sample
// products. It reads only metadata and small samples.
func (s *Store) Diagnostics(ctx context.Context, sampleSize int) (catalog.Diagnostics, error) {
	diag := catalog.Diagnostics{
		Tables:         []catalog.TableInfo{},
		SampleProducts: []catalog.SampleProduct{},
	}

	err := s.withConn(ctx, func(conn *sql.Conn) error {
		names, err := tableNames(ctx, conn)
		if err != nil {
			return err
		}

		for _, name := range names {
			var n int
			if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&n); err != nil {
				return fmt.Errorf("count rows in %s: %w", name, err)
			}
			diag.Tables = append(diag.Tables, catalog.TableInfo{Name: name, Rows: n})
			switch name {
			case "products":
				diag.ProductCount = n
			case "categories":
				diag.CategoryCount = n
			}
		}

		if diag.ProductCount == 0 || sampleSize <= 0 {
			return nil
		}
		diag.SampleProducts, err = sampleProducts(ctx, conn, sampleSize)
		return err
	})
	if err != nil {
		return diag, err
	}
	return diag, nil
}

func tableNames(ctx context.Context, conn *sql.Conn) ([]string, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return names, nil
}

func sampleProducts(ctx context.Context, conn *sql.Conn, n int) ([]catalog.SampleProduct, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT id, COALESCE(name, ''), COALESCE(price, 0)
		FROM products
		ORDER BY id ASC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []catalog.SampleProduct{}
	for rows.Next() {
		var sp catalog.SampleProduct
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Price); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

// quoteIdent quotes a table name read from sqlite_master.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
