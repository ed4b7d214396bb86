package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/store-admin/internal/domain/product"
)

const (
	lowStockSQL = `SELECT id, name, inventory_count, COALESCE(images[1], '')
		FROM products WHERE inventory_count < $1
		ORDER BY inventory_count, id LIMIT $2`

	countLowStockSQL = `SELECT count(*) FROM products WHERE inventory_count < $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// LowStock returns up to limit products with inventory below threshold.
func (r *ProductRepository) LowStock(ctx context.Context, threshold, limit int) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, lowStockSQL, threshold, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query low stock")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// CountLowStock counts products with inventory below threshold.
func (r *ProductRepository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countLowStockSQL, threshold).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count low stock")
	}
	return n, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.InventoryCount, &p.Image)
	return p, err
}
