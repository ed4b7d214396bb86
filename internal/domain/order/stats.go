package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/store-admin/internal/domain/product"
)

// StatsRepository provides order aggregates for the dashboard.
type StatsRepository interface {
	CountAndRevenue(ctx context.Context) (count int64, revenue decimal.Decimal, err error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
}

// Dashboard summarizes store activity.
type Dashboard struct {
	TotalOrders   int64
	TotalRevenue  decimal.Decimal
	PendingOrders int64
	LowStockCount int64
	RecentOrders  []Order
	LowStock      []product.Product
}

// StatsConfig holds the dashboard thresholds.
type StatsConfig struct {
	LowStockThreshold int
	ListLimit         int
}

// Stats assembles the admin dashboard.
type Stats struct {
	orders   Repository
	agg      StatsRepository
	products product.Repository
	cfg      StatsConfig
}

// NewStats creates a Stats service. Non-positive config values fall back to 5.
func NewStats(orders Repository, agg StatsRepository, products product.Repository, cfg StatsConfig) *Stats {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 5
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 5
	}
	return &Stats{orders: orders, agg: agg, products: products, cfg: cfg}
}

// Dashboard runs the dashboard queries concurrently and fails if any fails.
func (s *Stats) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, revenue, err := s.agg.CountAndRevenue(ctx)
		if err != nil {
			return errors.Wrap(err, "count orders")
		}
		d.TotalOrders, d.TotalRevenue = n, revenue
		return nil
	})
	g.Go(func() error {
		n, err := s.agg.CountByStatus(ctx, StatusPending)
		if err != nil {
			return errors.Wrap(err, "count pending")
		}
		d.PendingOrders = n
		return nil
	})
	g.Go(func() error {
		n, err := s.products.CountLowStock(ctx, s.cfg.LowStockThreshold)
		if err != nil {
			return errors.Wrap(err, "count low stock")
		}
		d.LowStockCount = n
		return nil
	})
	g.Go(func() error {
		recent, err := s.orders.List(ctx, Filter{Limit: s.cfg.ListLimit})
		if err != nil {
			return errors.Wrap(err, "recent orders")
		}
		d.RecentOrders = recent
		return nil
	})
	g.Go(func() error {
		low, err := s.products.LowStock(ctx, s.cfg.LowStockThreshold, s.cfg.ListLimit)
		if err != nil {
			return errors.Wrap(err, "low stock")
		}
		d.LowStock = low
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
