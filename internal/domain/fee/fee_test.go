package fee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/store-admin/internal/domain/settings"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func baseSettings() *settings.StoreSettings {
	s := settings.Fallback()
	s.ShippingCharge = d("100")
	s.FreeShippingThreshold = decimal.NewNullDecimal(d("999"))
	return &s
}

func TestCodFee(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		setup    func(s *settings.StoreSettings)
		want     string
	}{
		{
			name:     "disabled",
			subtotal: "1000",
			setup: func(s *settings.StoreSettings) {
				s.EnableCodFee = false
				s.CodFeePercentage = d("2")
			},
			want: "0",
		},
		{
			name:     "disabled ignores invalid type",
			subtotal: "1000",
			setup: func(s *settings.StoreSettings) {
				s.EnableCodFee = false
				s.CodFeeType = "tiered"
			},
			want: "0",
		},
		{
			name:     "percentage",
			subtotal: "1000",
			setup: func(s *settings.StoreSettings) {
				s.EnableCodFee = true
				s.CodFeeType = settings.FeePercentage
				s.CodFeePercentage = d("2")
			},
			want: "20",
		},
		{
			name:     "percentage keeps precision",
			subtotal: "333.33",
			setup: func(s *settings.StoreSettings) {
				s.EnableCodFee = true
				s.CodFeeType = settings.FeePercentage
				s.CodFeePercentage = d("2.5")
			},
			want: "8.33325",
		},
		{
			name:     "fixed",
			subtotal: "1000",
			setup: func(s *settings.StoreSettings) {
				s.EnableCodFee = true
				s.CodFeeType = settings.FeeFixed
				s.CodFeeFixed = d("30")
			},
			want: "30",
		},
		{
			name:     "fixed below min order",
			subtotal: "499.99",
			setup: func(s *settings.StoreSettings) {
				s.EnableCodFee = true
				s.CodFeeType = settings.FeeFixed
				s.CodFeeFixed = d("30")
				s.CodFeeMinOrder = d("500")
			},
			want: "0",
		},
		{
			name:     "percentage below min order",
			subtotal: "100",
			setup: func(s *settings.StoreSettings) {
				s.EnableCodFee = true
				s.CodFeeType = settings.FeePercentage
				s.CodFeePercentage = d("2")
				s.CodFeeMinOrder = d("500")
			},
			want: "0",
		},
		{
			name:     "exactly at min order",
			subtotal: "500",
			setup: func(s *settings.StoreSettings) {
				s.EnableCodFee = true
				s.CodFeeType = settings.FeeFixed
				s.CodFeeFixed = d("30")
				s.CodFeeMinOrder = d("500")
			},
			want: "30",
		},
		{
			name:     "zero subtotal",
			subtotal: "0",
			setup: func(s *settings.StoreSettings) {
				s.EnableCodFee = true
				s.CodFeeType = settings.FeePercentage
				s.CodFeePercentage = d("2")
			},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseSettings()
			tt.setup(s)

			got, err := CodFee(d(tt.subtotal), s)
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestCodFee_DisabledIsAlwaysZero(t *testing.T) {
	s := baseSettings()
	s.EnableCodFee = false
	s.CodFeeType = settings.FeeFixed
	s.CodFeeFixed = d("45")

	for _, subtotal := range []string{"0", "0.01", "1", "499", "999", "1000", "123456.78"} {
		got, err := CodFee(d(subtotal), s)
		require.NoError(t, err)
		assert.True(t, got.IsZero(), "subtotal %s", subtotal)
	}
}

func TestCodFee_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(s *settings.StoreSettings)
		wantField string
	}{
		{
			name:      "unknown type",
			setup:     func(s *settings.StoreSettings) { s.CodFeeType = "tiered" },
			wantField: "cod_fee_type",
		},
		{
			name:      "negative percentage",
			setup:     func(s *settings.StoreSettings) { s.CodFeePercentage = d("-2") },
			wantField: "cod_fee_percentage",
		},
		{
			name: "negative fixed",
			setup: func(s *settings.StoreSettings) {
				s.CodFeeType = settings.FeeFixed
				s.CodFeeFixed = d("-30")
			},
			wantField: "cod_fee_fixed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseSettings()
			s.EnableCodFee = true
			tt.setup(s)

			_, err := CodFee(d("1000"), s)
			var cfgErr *settings.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestShippingFee(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		setup    func(s *settings.StoreSettings)
		want     string
	}{
		{name: "exactly at threshold ships free", subtotal: "999", want: "0"},
		{name: "one below threshold", subtotal: "998", want: "100"},
		{name: "cent below threshold", subtotal: "998.99", want: "100"},
		{name: "above threshold", subtotal: "5000", want: "0"},
		{name: "zero subtotal", subtotal: "0", want: "100"},
		{
			name:     "free shipping disabled",
			subtotal: "5000",
			setup: func(s *settings.StoreSettings) {
				s.FreeShippingThreshold = decimal.NullDecimal{}
			},
			want: "100",
		},
		{
			name:     "zero threshold always free",
			subtotal: "0",
			setup: func(s *settings.StoreSettings) {
				s.FreeShippingThreshold = decimal.NewNullDecimal(decimal.Zero)
			},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseSettings()
			if tt.setup != nil {
				tt.setup(s)
			}

			got, err := ShippingFee(d(tt.subtotal), s)
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestShippingFee_NegativeCharge(t *testing.T) {
	s := baseSettings()
	s.ShippingCharge = d("-1")

	_, err := ShippingFee(d("10"), s)
	var cfgErr *settings.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "shipping_charge", cfgErr.Field)
}

func TestNegativeSubtotal(t *testing.T) {
	s := baseSettings()
	s.EnableCodFee = true
	s.CodFeePercentage = d("2")

	_, err := CodFee(d("-1"), s)
	require.ErrorIs(t, err, ErrNegativeSubtotal)

	_, err = ShippingFee(d("-1"), s)
	require.ErrorIs(t, err, ErrNegativeSubtotal)

	_, err = OrderTotal(d("-1"), s)
	require.ErrorIs(t, err, ErrNegativeSubtotal)
}

func TestOrderTotal(t *testing.T) {
	s := baseSettings()
	s.EnableCodFee = true
	s.CodFeeType = settings.FeePercentage
	s.CodFeePercentage = d("2")

	tests := []struct {
		subtotal string
		want     string
	}{
		// 500 + 100 shipping + 10 cod
		{subtotal: "500", want: "610"},
		// free shipping, 2% cod
		{subtotal: "1000", want: "1020"},
		{subtotal: "999", want: "1018.98"},
		{subtotal: "0", want: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			got, err := OrderTotal(d(tt.subtotal), s)
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestOrderTotal_FallbackSettings(t *testing.T) {
	fb := settings.Fallback()

	got, err := OrderTotal(d("250.50"), &fb)
	require.NoError(t, err)
	assert.True(t, d("250.50").Equal(got))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "8.33", Display(d("8.33325")))
	assert.Equal(t, "20.00", Display(d("20")))
	assert.Equal(t, "0.01", Display(d("0.005")))
	assert.Equal(t, "0.00", Display(decimal.Zero))
}
