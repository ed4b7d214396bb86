package repository

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/store-admin/internal/domain/order"
	"github.com/xenking/store-admin/internal/domain/product"
)

const (
	upsertProductSQL = `INSERT INTO products (id, name, inventory_count, images)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			inventory_count = EXCLUDED.inventory_count,
			images = EXCLUDED.images`

	insertOrderSQL = `INSERT INTO orders (id, customer_name, customer_phone, shipping_address, payment_method,
		status, payment_status, total_amount, is_gift_wrapped, gstin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (id) DO NOTHING`

	insertOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, quantity, price_at_purchase, variant_color, variant_size)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`
)

// Seeder loads fixture data. It is used by the seed-db command and tests.
type Seeder struct {
	pool *pgxpool.Pool
}

// NewSeeder returns a Seeder that uses the given pool.
func NewSeeder(pool *pgxpool.Pool) *Seeder {
	return &Seeder{pool: pool}
}

// UpsertProducts inserts or updates products in a single batch.
func (s *Seeder) UpsertProducts(ctx context.Context, products []product.Product) error {
	batch := &pgx.Batch{}
	for _, p := range products {
		images := []string{}
		if p.Image != "" {
			images = append(images, p.Image)
		}
		batch.Queue(upsertProductSQL, p.ID, p.Name, p.InventoryCount, images)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "upsert products")
	}
	return nil
}

// InsertOrder stores o and its items. Missing IDs are generated and written
// back to o. Existing orders are left untouched.
func (s *Seeder) InsertOrder(ctx context.Context, o *order.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = order.StatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = order.PaymentUnpaid
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	o.UpdatedAt = o.CreatedAt
	for i := range o.Items {
		if o.Items[i].ID == "" {
			o.Items[i].ID = uuid.NewString()
		}
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertOrderSQL,
			o.ID, o.CustomerName, o.CustomerPhone, o.ShippingAddress, o.PaymentMethod,
			string(o.Status), string(o.PaymentStatus), o.TotalAmount, o.IsGiftWrapped, o.GSTIN, o.CreatedAt,
		); err != nil {
			return errors.Wrapf(err, "insert order %q", o.ID)
		}
		for _, it := range o.Items {
			if _, err := tx.Exec(ctx, insertOrderItemSQL,
				it.ID, o.ID, it.ProductID, it.Quantity, it.PriceAtPurchase, it.VariantColor, it.VariantSize,
			); err != nil {
				return errors.Wrapf(err, "insert item %q of order %q", it.ID, o.ID)
			}
		}
		return nil
	})
}
