// Package settings holds the store-wide configuration row that drives fee
// calculation, payment options and shipping rules.
package settings

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// FeeType enumerates the supported COD convenience fee strategies.
type FeeType string

const (
	// FeePercentage charges a percentage of the order subtotal.
	FeePercentage FeeType = "percentage"
	// FeeFixed charges a flat amount per order.
	FeeFixed FeeType = "fixed"
)

// ParseFeeType validates a raw fee type value.
func ParseFeeType(s string) (FeeType, error) {
	switch t := FeeType(s); t {
	case FeePercentage, FeeFixed:
		return t, nil
	default:
		return "", &ConfigurationError{Field: "cod_fee_type", Reason: fmt.Sprintf("unknown fee type %q", s)}
	}
}

// ErrNotFound is returned by a Repository when the settings row does not exist.
var ErrNotFound = errors.New("settings not found")

// ConfigurationError reports a settings field holding a value the fee engine
// cannot work with.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid setting %s: %s", e.Field, e.Reason)
}

var hundred = decimal.NewFromInt(100)

// StoreSettings is the single configuration row of the store.
type StoreSettings struct {
	StoreName        string   `json:"store_name"`
	SupportEmail     string   `json:"support_email"`
	SupportPhone     string   `json:"support_phone"`
	StoreDescription string   `json:"store_description"`
	Pincodes         []string `json:"pincodes"`

	ShippingCharge decimal.Decimal `json:"shipping_charge"`
	// FreeShippingThreshold is null when free shipping is switched off.
	FreeShippingThreshold decimal.NullDecimal `json:"free_shipping_threshold"`

	IsCodEnabled    bool `json:"is_cod_enabled"`
	IsStripeEnabled bool `json:"is_stripe_enabled"`

	EnableCodFee     bool            `json:"enable_cod_fee"`
	CodFeeType       FeeType         `json:"cod_fee_type"`
	CodFeePercentage decimal.Decimal `json:"cod_fee_percentage"`
	CodFeeFixed      decimal.Decimal `json:"cod_fee_fixed"`
	CodFeeMinOrder   decimal.Decimal `json:"cod_fee_min_order"`

	GiftWrapFee decimal.Decimal `json:"gift_wrap_fee"`
	LoyaltyRate decimal.Decimal `json:"loyalty_rate"`
	EmailAlerts bool            `json:"email_alerts"`
	SmsAlerts   bool            `json:"sms_alerts"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Fallback returns the settings used when the store has no settings row:
// every optional charge and discount is disabled.
func Fallback() StoreSettings {
	return StoreSettings{
		ShippingCharge:   decimal.Zero,
		CodFeeType:       FeePercentage,
		CodFeePercentage: decimal.Zero,
		CodFeeFixed:      decimal.Zero,
		CodFeeMinOrder:   decimal.Zero,
		GiftWrapFee:      decimal.Zero,
		LoyaltyRate:      decimal.Zero,
	}
}

// FreeShippingEnabled reports whether orders can qualify for free shipping.
func (s *StoreSettings) FreeShippingEnabled() bool {
	return s.FreeShippingThreshold.Valid
}

// ValidateCodFee checks the fields consulted by the COD fee calculation.
func (s *StoreSettings) ValidateCodFee() error {
	if _, err := ParseFeeType(string(s.CodFeeType)); err != nil {
		return err
	}
	if s.CodFeePercentage.IsNegative() {
		return &ConfigurationError{Field: "cod_fee_percentage", Reason: "must not be negative"}
	}
	if s.CodFeePercentage.GreaterThan(hundred) {
		return &ConfigurationError{Field: "cod_fee_percentage", Reason: "must not exceed 100"}
	}
	if s.CodFeeFixed.IsNegative() {
		return &ConfigurationError{Field: "cod_fee_fixed", Reason: "must not be negative"}
	}
	if s.CodFeeMinOrder.IsNegative() {
		return &ConfigurationError{Field: "cod_fee_min_order", Reason: "must not be negative"}
	}
	return nil
}

// ValidateShipping checks the fields consulted by the shipping fee calculation.
func (s *StoreSettings) ValidateShipping() error {
	if s.ShippingCharge.IsNegative() {
		return &ConfigurationError{Field: "shipping_charge", Reason: "must not be negative"}
	}
	if s.FreeShippingThreshold.Valid && s.FreeShippingThreshold.Decimal.IsNegative() {
		return &ConfigurationError{Field: "free_shipping_threshold", Reason: "must not be negative"}
	}
	return nil
}

// Validate returns the first *ConfigurationError found in s, or nil.
func (s *StoreSettings) Validate() error {
	if err := s.ValidateShipping(); err != nil {
		return err
	}
	if err := s.ValidateCodFee(); err != nil {
		return err
	}
	if s.GiftWrapFee.IsNegative() {
		return &ConfigurationError{Field: "gift_wrap_fee", Reason: "must not be negative"}
	}
	if s.LoyaltyRate.IsNegative() {
		return &ConfigurationError{Field: "loyalty_rate", Reason: "must not be negative"}
	}
	return nil
}

// IsServiceable reports whether the store delivers to pincode. An empty
// pincode list means the store ships everywhere.
func (s *StoreSettings) IsServiceable(pincode string) bool {
	if len(s.Pincodes) == 0 {
		return true
	}
	return slices.Contains(s.Pincodes, strings.TrimSpace(pincode))
}

// NormalizePincodes trims entries and drops empty ones and duplicates,
// keeping the first occurrence order.
func NormalizePincodes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" || slices.Contains(out, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Repository persists the settings row.
type Repository interface {
	// Get returns ErrNotFound when no settings row exists.
	Get(ctx context.Context) (*StoreSettings, error)
	Upsert(ctx context.Context, s *StoreSettings) error
}
