package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/store-admin/internal/domain/order"
)

func TestReadFixture_Bundled(t *testing.T) {
	fx, err := readFixture(filepath.Join("..", "..", "db", "seed", "store.json"))
	require.NoError(t, err)

	require.NotNil(t, fx.Settings)
	require.NoError(t, fx.Settings.Validate())
	assert.True(t, fx.Settings.FreeShippingEnabled())
	assert.NotEmpty(t, fx.Products)
	require.NotEmpty(t, fx.Orders)

	for _, raw := range fx.Orders {
		o, err := raw.toOrder()
		require.NoError(t, err)
		assert.False(t, o.TotalAmount.IsZero(), "order %s total", o.ID)
	}
}

func TestReadFixture_Gzip(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "db", "seed", "store.json"))
	require.NoError(t, err)

	var buf bytes.Buffer
	gz := pgzip.NewWriter(&buf)
	_, err = gz.Write(raw)
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "store.json.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	fx, err := readFixture(path)
	require.NoError(t, err)
	assert.Equal(t, "Kala Handloom", fx.Settings.StoreName)
}

func TestDecodeFixture(t *testing.T) {
	t.Run("total from items", func(t *testing.T) {
		fx, err := decodeFixture(strings.NewReader(`{"orders":[{"items":[
			{"product_id":"p1","quantity":2,"price_at_purchase":"10.25"},
			{"product_id":"p2","quantity":1,"price_at_purchase":5}
		]}]}`))
		require.NoError(t, err)
		require.Nil(t, fx.Settings)

		o, err := fx.Orders[0].toOrder()
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("25.5").Equal(o.TotalAmount))
		assert.Empty(t, o.Status, "defaults are filled by the seeder")
	})

	t.Run("unknown status", func(t *testing.T) {
		fx, err := decodeFixture(strings.NewReader(`{"orders":[{"status":"Lost"}]}`))
		require.NoError(t, err)
		_, err = fx.Orders[0].toOrder()
		require.ErrorIs(t, err, order.ErrUnknownStatus)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := decodeFixture(strings.NewReader(`{"coupons":[]}`))
		require.Error(t, err)
	})
}
