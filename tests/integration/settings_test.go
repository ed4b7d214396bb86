//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
)

// putSettings replaces the fee-related settings used by tests.
func putSettings(t *testing.T, body map[string]any) settingsResponse {
	t.Helper()
	resp := do(t, http.MethodPut, "/api/settings", body)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)
	return decodeJSON[settingsResponse](t, resp)
}

func defaultFees() map[string]any {
	return map[string]any{
		"store_name":              "Kala Handloom",
		"pincodes":                []string{"560034", "110001"},
		"shipping_charge":         79,
		"free_shipping_threshold": 1499,
		"enable_cod_fee":          true,
		"cod_fee_type":            "percentage",
		"cod_fee_percentage":      2,
		"cod_fee_fixed":           0,
		"cod_fee_min_order":       300,
		"gift_wrap_fee":           49,
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	saved := putSettings(t, defaultFees())
	if saved.UpdatedAt == "" {
		t.Fatal("updated_at not set")
	}

	resp := doGet(t, "/api/settings")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	got := decodeJSON[settingsResponse](t, resp)
	if got.StoreName != "Kala Handloom" {
		t.Errorf("store_name: got %q", got.StoreName)
	}
	if got.FreeShippingThreshold == nil || *got.FreeShippingThreshold != 1499 {
		t.Errorf("free_shipping_threshold: got %v", got.FreeShippingThreshold)
	}
	if got.CodFeePercentage != 2 || got.CodFeeMinOrder != 300 {
		t.Errorf("cod fee: got %v%% min %v", got.CodFeePercentage, got.CodFeeMinOrder)
	}
	if len(got.Pincodes) != 2 {
		t.Errorf("pincodes: got %v", got.Pincodes)
	}
}

func TestSettings_PartialUpdateAndCacheInvalidation(t *testing.T) {
	putSettings(t, defaultFees())

	// Warm the cache.
	resp := doGet(t, "/api/settings")
	resp.Body.Close()

	putSettings(t, map[string]any{"cod_fee_type": "fixed", "cod_fee_fixed": 35, "free_shipping_threshold": nil})

	resp = doGet(t, "/api/settings")
	defer resp.Body.Close()
	got := decodeJSON[settingsResponse](t, resp)
	if got.CodFeeType != "fixed" || got.CodFeeFixed != 35 {
		t.Errorf("cod fee: got %s %v", got.CodFeeType, got.CodFeeFixed)
	}
	if got.FreeShippingThreshold != nil {
		t.Errorf("free shipping should be off, got %v", *got.FreeShippingThreshold)
	}
	if got.StoreName != "Kala Handloom" {
		t.Errorf("unrelated field changed: %q", got.StoreName)
	}
}

func TestSettings_KeepsPrecision(t *testing.T) {
	putSettings(t, defaultFees())

	saved := putSettings(t, map[string]any{"cod_fee_percentage": "2.125", "cod_fee_min_order": "0.005"})
	if saved.CodFeePercentage != 2.125 || saved.CodFeeMinOrder != 0.005 {
		t.Errorf("saved: got %v%% min %v", saved.CodFeePercentage, saved.CodFeeMinOrder)
	}

	var pct, minOrder string
	if err := pool.QueryRow(context.Background(),
		`SELECT cod_fee_percentage::text, cod_fee_min_order::text FROM settings WHERE id = 1`,
	).Scan(&pct, &minOrder); err != nil {
		t.Fatalf("query settings: %v", err)
	}
	if pct != "2.125" || minOrder != "0.005" {
		t.Errorf("stored: got %s%% min %s", pct, minOrder)
	}

	resp := doGet(t, "/api/settings")
	defer resp.Body.Close()
	if got := decodeJSON[settingsResponse](t, resp); got.CodFeePercentage != 2.125 {
		t.Errorf("read back: got %v", got.CodFeePercentage)
	}

	resp = do(t, http.MethodPost, "/api/settings/preview", map[string]any{"subtotal": 1000})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)
	body := decodeJSON[struct {
		Breakdown breakdownResponse `json:"breakdown"`
	}](t, resp)
	if body.Breakdown.CodFee != 21.25 {
		t.Errorf("cod fee: got %v", body.Breakdown.CodFee)
	}
}

func TestSettings_Rejected(t *testing.T) {
	putSettings(t, defaultFees())

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"percentage over 100", map[string]any{"cod_fee_percentage": 120}, http.StatusUnprocessableEntity},
		{"negative fixed fee", map[string]any{"cod_fee_fixed": -5}, http.StatusUnprocessableEntity},
		{"unknown fee type", map[string]any{"cod_fee_type": "tiered"}, http.StatusUnprocessableEntity},
		{"bad amount", map[string]any{"shipping_charge": "free"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPut, "/api/settings", tt.body)
			defer resp.Body.Close()
			expectStatus(t, resp, tt.want)
		})
	}

	resp := doGet(t, "/api/settings")
	defer resp.Body.Close()
	got := decodeJSON[settingsResponse](t, resp)
	if got.CodFeeType != "percentage" || got.CodFeePercentage != 2 {
		t.Errorf("rejected update was stored: %s %v", got.CodFeeType, got.CodFeePercentage)
	}
}

func TestSettings_Preview(t *testing.T) {
	putSettings(t, defaultFees())

	resp := do(t, http.MethodPost, "/api/settings/preview", map[string]any{
		"cod_fee_percentage": 5,
		"subtotal":           800,
	})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	body := decodeJSON[struct {
		Breakdown breakdownResponse `json:"breakdown"`
	}](t, resp)
	b := body.Breakdown
	if b.Subtotal != 800 || b.Shipping != 79 || b.CodFee != 40 || b.Total != 919 {
		t.Fatalf("unexpected breakdown: %+v", b)
	}
	if b.Display["total"] != "919.00" {
		t.Errorf("display total: got %q", b.Display["total"])
	}

	// Preview never persists.
	resp = doGet(t, "/api/settings")
	defer resp.Body.Close()
	if got := decodeJSON[settingsResponse](t, resp); got.CodFeePercentage != 2 {
		t.Errorf("preview changed stored percentage to %v", got.CodFeePercentage)
	}
}
