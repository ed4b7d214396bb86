package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/store-admin/internal/domain/order"
	"github.com/xenking/store-admin/internal/domain/product"
	"github.com/xenking/store-admin/internal/domain/settings"
)

type fixture struct {
	Settings *settings.StoreSettings `json:"settings"`
	Products []productJSON           `json:"products"`
	Orders   []orderJSON             `json:"orders"`
}

type productJSON struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	InventoryCount int    `json:"inventory_count"`
	Image          string `json:"image"`
}

type orderJSON struct {
	ID              string          `json:"id"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	ShippingAddress order.Address   `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	IsGiftWrapped   bool            `json:"is_gift_wrapped"`
	GSTIN           string          `json:"gstin"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []struct {
		ProductID       string          `json:"product_id"`
		Quantity        int             `json:"quantity"`
		PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
		VariantColor    string          `json:"variant_color"`
		VariantSize     string          `json:"variant_size"`
	} `json:"items"`
}

// readFixture decodes a JSON fixture. Files ending in .gz are decompressed
// with pgzip.
func readFixture(path string) (*fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open fixture")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip stream")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	return decodeFixture(r)
}

func decodeFixture(r io.Reader) (*fixture, error) {
	var fx fixture
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fx); err != nil {
		return nil, errors.Wrap(err, "decode fixture")
	}
	return &fx, nil
}

func (p productJSON) toProduct() product.Product {
	return product.Product{
		ID:             p.ID,
		Name:           p.Name,
		InventoryCount: p.InventoryCount,
		Image:          p.Image,
	}
}

// toOrder validates statuses and computes the total from the items when the
// fixture leaves it out.
func (o orderJSON) toOrder() (*order.Order, error) {
	out := &order.Order{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		TotalAmount:     o.TotalAmount,
		IsGiftWrapped:   o.IsGiftWrapped,
		GSTIN:           o.GSTIN,
		CreatedAt:       o.CreatedAt,
	}
	if o.Status != "" {
		st, err := order.ParseStatus(o.Status)
		if err != nil {
			return nil, err
		}
		out.Status = st
	}
	if o.PaymentStatus != "" {
		ps, err := order.ParsePaymentStatus(o.PaymentStatus)
		if err != nil {
			return nil, err
		}
		out.PaymentStatus = ps
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, order.Item{
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
			VariantColor:    it.VariantColor,
			VariantSize:     it.VariantSize,
		})
	}
	if out.TotalAmount.IsZero() {
		out.TotalAmount = out.Subtotal()
	}
	return out, nil
}
