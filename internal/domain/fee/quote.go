package fee

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/store-admin/internal/domain/settings"
)

// Extras are optional order add-ons priced on top of the base fees.
type Extras struct {
	GiftWrap bool
	Discount decimal.Decimal
}

// Breakdown itemizes the components of an order total.
type Breakdown struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Cod      decimal.Decimal
	GiftWrap decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Quote prices subtotal under s. Without extras Total equals
// subtotal + shipping + cod. Discounts never push Total below zero.
func Quote(subtotal decimal.Decimal, s *settings.StoreSettings, extras Extras) (Breakdown, error) {
	shipping, err := ShippingFee(subtotal, s)
	if err != nil {
		return Breakdown{}, errors.Wrap(err, "shipping fee")
	}
	cod, err := CodFee(subtotal, s)
	if err != nil {
		return Breakdown{}, errors.Wrap(err, "cod fee")
	}
	if extras.Discount.IsNegative() {
		return Breakdown{}, errors.New("discount must not be negative")
	}

	b := Breakdown{
		Subtotal: subtotal,
		Shipping: shipping,
		Cod:      cod,
		GiftWrap: decimal.Zero,
		Discount: extras.Discount,
	}
	if extras.GiftWrap {
		if s.GiftWrapFee.IsNegative() {
			return Breakdown{}, &settings.ConfigurationError{Field: "gift_wrap_fee", Reason: "must not be negative"}
		}
		b.GiftWrap = s.GiftWrapFee
	}

	total := subtotal.Add(shipping).Add(cod).Add(b.GiftWrap).Sub(b.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	b.Total = total
	return b, nil
}

// DefaultPreviewSubtotal is the sample order value used by the settings page
// to preview the configured fees.
var DefaultPreviewSubtotal = decimal.NewFromInt(1000)

// Preview quotes a sample subtotal so admins can see the effect of settings
// before saving them. A nil sample uses DefaultPreviewSubtotal; zero is
// priced as given.
func Preview(s *settings.StoreSettings, sample *decimal.Decimal) (Breakdown, error) {
	if sample == nil {
		return Quote(DefaultPreviewSubtotal, s, Extras{})
	}
	return Quote(*sample, s, Extras{})
}
