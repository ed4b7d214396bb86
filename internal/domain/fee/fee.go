// Package fee computes the shipping and cash-on-delivery charges added to an
// order subtotal.
//
// All functions are pure. Amounts are never rounded during computation;
// rounding happens only in Display.
package fee

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/store-admin/internal/domain/settings"
)

// ErrNegativeSubtotal is returned when a subtotal below zero is passed in.
var ErrNegativeSubtotal = errors.New("subtotal must not be negative")

var hundred = decimal.NewFromInt(100)

func checkSubtotal(subtotal decimal.Decimal) error {
	if subtotal.IsNegative() {
		return ErrNegativeSubtotal
	}
	return nil
}

// CodFee returns the cash-on-delivery convenience fee for subtotal.
//
// The fee is zero when it is disabled or when subtotal is strictly below the
// configured minimum order.
func CodFee(subtotal decimal.Decimal, s *settings.StoreSettings) (decimal.Decimal, error) {
	if err := checkSubtotal(subtotal); err != nil {
		return decimal.Zero, err
	}
	if !s.EnableCodFee {
		return decimal.Zero, nil
	}
	if err := s.ValidateCodFee(); err != nil {
		return decimal.Zero, err
	}
	if subtotal.LessThan(s.CodFeeMinOrder) {
		return decimal.Zero, nil
	}

	switch s.CodFeeType {
	case settings.FeePercentage:
		return subtotal.Mul(s.CodFeePercentage).Div(hundred), nil
	case settings.FeeFixed:
		return s.CodFeeFixed, nil
	default:
		// ValidateCodFee rejects unknown types.
		return decimal.Zero, &settings.ConfigurationError{Field: "cod_fee_type", Reason: "unknown fee type"}
	}
}

// ShippingFee returns the shipping charge for subtotal. Orders at or above the
// free shipping threshold ship for free.
func ShippingFee(subtotal decimal.Decimal, s *settings.StoreSettings) (decimal.Decimal, error) {
	if err := checkSubtotal(subtotal); err != nil {
		return decimal.Zero, err
	}
	if err := s.ValidateShipping(); err != nil {
		return decimal.Zero, err
	}
	if s.FreeShippingThreshold.Valid && subtotal.GreaterThanOrEqual(s.FreeShippingThreshold.Decimal) {
		return decimal.Zero, nil
	}
	return s.ShippingCharge, nil
}

// OrderTotal returns subtotal plus shipping plus the COD fee.
func OrderTotal(subtotal decimal.Decimal, s *settings.StoreSettings) (decimal.Decimal, error) {
	b, err := Quote(subtotal, s, Extras{})
	if err != nil {
		return decimal.Zero, err
	}
	return b.Total, nil
}

// Display formats an amount for presentation with exactly two decimals.
func Display(d decimal.Decimal) string {
	return d.StringFixed(2)
}
