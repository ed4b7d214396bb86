package product

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is the inventory view of a catalog item.
type Product struct {
	ID             string
	Name           string
	InventoryCount int
	Image          string
}

// Repository defines inventory queries over the product catalog.
type Repository interface {
	// LowStock returns up to limit products with fewer than threshold units,
	// lowest stock first.
	LowStock(ctx context.Context, threshold, limit int) ([]Product, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}
