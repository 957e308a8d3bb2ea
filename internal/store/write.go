package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/vitrine/internal/catalog"
)

// ImportCategories upserts categories by id in one transaction.
// Returns the number of rows written.
func (s *Store) ImportCategories(ctx context.Context, categories []catalog.Category) (int, error) {
	return s.inTx(ctx, func(tx *sql.Tx) (int, error) {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO categories (id, name) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name
		`)
		if err != nil {
			return 0, fmt.Errorf("prepare category upsert: %w", err)
		}
		defer stmt.Close()

		for _, c := range categories {
			if _, err := stmt.ExecContext(ctx, c.ID, c.Name); err != nil {
				return 0, fmt.Errorf("write category %s: %w", c.ID, err)
			}
		}
		return len(categories), nil
	})
}

// ImportProducts upserts products by shopee_id in one transaction. The id
// of an existing row is preserved. A zero CreatedAt is stamped with the
// current time. Returns the number of rows written.
func (s *Store) ImportProducts(ctx context.Context, products []catalog.Product) (int, error) {
	return s.inTx(ctx, func(tx *sql.Tx) (int, error) {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO products (
				shopee_id, name, price, original_price, image_url, shop_name, shop_id,
				commission_rate, offer_link, rating_star, price_discount_rate, sales,
				category_id, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(shopee_id) DO UPDATE SET
				name = excluded.name,
				price = excluded.price,
				original_price = excluded.original_price,
				image_url = excluded.image_url,
				shop_name = excluded.shop_name,
				shop_id = excluded.shop_id,
				commission_rate = excluded.commission_rate,
				offer_link = excluded.offer_link,
				rating_star = excluded.rating_star,
				price_discount_rate = excluded.price_discount_rate,
				sales = excluded.sales,
				category_id = excluded.category_id
		`)
		if err != nil {
			return 0, fmt.Errorf("prepare product upsert: %w", err)
		}
		defer stmt.Close()

		for _, p := range products {
			created := p.CreatedAt
			if created.IsZero() {
				created = s.now()
			}
			_, err := stmt.ExecContext(ctx,
				p.ShopeeID, p.Name, p.Price, p.OriginalPrice, nullString(p.ImageURL),
				p.ShopName, p.ShopID, p.CommissionRate, p.OfferLink, p.RatingStar,
				p.PriceDiscountRate, p.Sales, nullString(p.CategoryID), formatTime(created),
			)
			if err != nil {
				return 0, fmt.Errorf("write product %s: %w", p.ShopeeID, err)
			}
		}
		return len(products), nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) (int, error)) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify(fmt.Errorf("begin transaction: %w", err))
	}

	n, err := fn(tx)
	if err != nil {
		_ = tx.Rollback()
		return 0, classify(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, classify(fmt.Errorf("commit: %w", err))
	}
	return n, nil
}

// nullString stores "" as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
