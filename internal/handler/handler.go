// Package handler exposes the admin API over HTTP using chi for routing and
// jx for the JSON wire format.
package handler

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/store-admin/internal/domain/fee"
	"github.com/xenking/store-admin/internal/domain/order"
	"github.com/xenking/store-admin/internal/domain/product"
	"github.com/xenking/store-admin/internal/domain/settings"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// PreviewSubtotal is the sample order value priced by the settings preview.
	PreviewSubtotal decimal.Decimal
	// LowStockThreshold is the inventory count below which a product is low.
	LowStockThreshold int
	// MaxListLimit caps the limit query parameter of list endpoints.
	MaxListLimit int
}

// Handler serves the admin API, delegating business logic to domain services.
type Handler struct {
	settings *settings.Provider
	orders   *order.Service
	stats    *order.Stats
	products product.Repository
	cfg      Config
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	settingsProvider *settings.Provider,
	orders *order.Service,
	stats *order.Stats,
	products product.Repository,
) *Handler {
	if cfg.PreviewSubtotal.IsZero() {
		cfg.PreviewSubtotal = fee.DefaultPreviewSubtotal
	}
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 5
	}
	if cfg.MaxListLimit <= 0 {
		cfg.MaxListLimit = 100
	}
	return &Handler{
		settings: settingsProvider,
		orders:   orders,
		stats:    stats,
		products: products,
		cfg:      cfg,
	}
}
