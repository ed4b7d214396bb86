package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/store-admin/internal/domain/order"
)

const (
	orderColumns = `id::text, customer_name, customer_phone, shipping_address, payment_method,
		status, payment_status, total_amount, is_gift_wrapped, gstin, created_at, updated_at`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	getOrderItemsSQL = `SELECT oi.id::text, COALESCE(oi.product_id, ''), COALESCE(p.name, ''),
		oi.quantity, oi.price_at_purchase, oi.variant_color, oi.variant_size
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id
		LIMIT $2`

	updateStatusSQL        = `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`
	updatePaymentStatusSQL = `UPDATE orders SET payment_status = $2, updated_at = $3 WHERE id = $1`

	insertOrderEventSQL = `INSERT INTO order_events
		(order_id, field, from_value, to_value, regression, note, trace_id, span_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	orderHistorySQL = `SELECT order_id::text, field, from_value, to_value, regression, note, trace_id, span_id, created_at
		FROM order_events WHERE order_id = $1 ORDER BY id`

	countAndRevenueSQL = `SELECT count(*), COALESCE(sum(total_amount), 0) FROM orders`
	countByStatusSQL   = `SELECT count(*) FROM orders WHERE status = $1`
)

var (
	_ order.Repository      = (*OrderRepository)(nil)
	_ order.StatsRepository = (*OrderRepository)(nil)
)

// OrderRepository implements order.Repository and order.StatsRepository
// backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Get returns the order with its items. Malformed IDs are reported as
// order.ErrNotFound.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, order.ErrNotFound
	}

	rows, err := r.pool.Query(ctx, getOrderSQL, oid)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %q", id)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %q", id)
	}

	rows, err = r.pool.Query(ctx, getOrderItemsSQL, oid)
	if err != nil {
		return nil, errors.Wrapf(err, "get items of order %q", id)
	}
	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return nil, errors.Wrapf(err, "scan items of order %q", id)
	}
	o.Items = items

	return &o, nil
}

// List returns orders newest first without their items.
func (r *OrderRepository) List(ctx context.Context, f order.Filter) ([]order.Order, error) {
	var limit any
	if f.Limit > 0 {
		limit = f.Limit
	}
	rows, err := r.pool.Query(ctx, listOrdersSQL, string(f.Status), limit)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ApplyChange updates the status column named by c.Field and records c in
// order_events within one transaction.
func (r *OrderRepository) ApplyChange(ctx context.Context, c order.Change) error {
	oid, err := uuid.Parse(c.OrderID)
	if err != nil {
		return order.ErrNotFound
	}

	var updateSQL string
	switch c.Field {
	case order.FieldStatus:
		updateSQL = updateStatusSQL
	case order.FieldPaymentStatus:
		updateSQL = updatePaymentStatusSQL
	default:
		return errors.Errorf("unknown order field %q", c.Field)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateSQL, oid, c.To, c.At)
		if err != nil {
			return errors.Wrapf(err, "update %s", c.Field)
		}
		if tag.RowsAffected() == 0 {
			return order.ErrNotFound
		}

		if _, err := tx.Exec(ctx, insertOrderEventSQL,
			oid, string(c.Field), c.From, c.To, c.Regression, c.Note, c.TraceID, c.SpanID, c.At,
		); err != nil {
			return errors.Wrap(err, "insert order event")
		}
		return nil
	})
}

// History returns the recorded changes of an order, oldest first.
func (r *OrderRepository) History(ctx context.Context, id string) ([]order.Change, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, order.ErrNotFound
	}
	rows, err := r.pool.Query(ctx, orderHistorySQL, oid)
	if err != nil {
		return nil, errors.Wrapf(err, "history of order %q", id)
	}
	return pgx.CollectRows(rows, scanChange)
}

// CountAndRevenue returns the number of orders and the sum of their totals.
func (r *OrderRepository) CountAndRevenue(ctx context.Context) (int64, decimal.Decimal, error) {
	var (
		n       int64
		revenue decimal.Decimal
	)
	if err := r.pool.QueryRow(ctx, countAndRevenueSQL).Scan(&n, &revenue); err != nil {
		return 0, decimal.Zero, errors.Wrap(err, "count orders")
	}
	return n, revenue, nil
}

// CountByStatus returns the number of orders in status.
func (r *OrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countByStatusSQL, string(status)).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "count %s orders", status)
	}
	return n, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o             order.Order
		status        string
		paymentStatus string
	)
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.CustomerPhone, &o.ShippingAddress, &o.PaymentMethod,
		&status, &paymentStatus, &o.TotalAmount, &o.IsGiftWrapped, &o.GSTIN,
		&o.CreatedAt, &o.UpdatedAt,
	)
	o.Status = order.Status(status)
	o.PaymentStatus = order.PaymentStatus(paymentStatus)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(
		&it.ID, &it.ProductID, &it.ProductName,
		&it.Quantity, &it.PriceAtPurchase, &it.VariantColor, &it.VariantSize,
	)
	return it, err
}

func scanChange(row pgx.CollectableRow) (order.Change, error) {
	var (
		c     order.Change
		field string
	)
	err := row.Scan(&c.OrderID, &field, &c.From, &c.To, &c.Regression, &c.Note, &c.TraceID, &c.SpanID, &c.At)
	c.Field = order.Field(field)
	return c, err
}
