package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/store-admin/internal/domain/settings"
)

const (
	settingsColumns = `store_name, support_email, support_phone, store_description, pincodes,
		shipping_charge, free_shipping_threshold, is_cod_enabled, is_stripe_enabled,
		enable_cod_fee, cod_fee_type, cod_fee_percentage, cod_fee_fixed, cod_fee_min_order,
		gift_wrap_fee, loyalty_rate, email_alerts, sms_alerts, updated_at`

	getSettingsSQL = `SELECT ` + settingsColumns + ` FROM settings WHERE id = 1`

	upsertSettingsSQL = `INSERT INTO settings (id, store_name, support_email, support_phone, store_description, pincodes,
		shipping_charge, free_shipping_threshold, is_cod_enabled, is_stripe_enabled,
		enable_cod_fee, cod_fee_type, cod_fee_percentage, cod_fee_fixed, cod_fee_min_order,
		gift_wrap_fee, loyalty_rate, email_alerts, sms_alerts, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, now())
		ON CONFLICT (id) DO UPDATE SET
			store_name = EXCLUDED.store_name,
			support_email = EXCLUDED.support_email,
			support_phone = EXCLUDED.support_phone,
			store_description = EXCLUDED.store_description,
			pincodes = EXCLUDED.pincodes,
			shipping_charge = EXCLUDED.shipping_charge,
			free_shipping_threshold = EXCLUDED.free_shipping_threshold,
			is_cod_enabled = EXCLUDED.is_cod_enabled,
			is_stripe_enabled = EXCLUDED.is_stripe_enabled,
			enable_cod_fee = EXCLUDED.enable_cod_fee,
			cod_fee_type = EXCLUDED.cod_fee_type,
			cod_fee_percentage = EXCLUDED.cod_fee_percentage,
			cod_fee_fixed = EXCLUDED.cod_fee_fixed,
			cod_fee_min_order = EXCLUDED.cod_fee_min_order,
			gift_wrap_fee = EXCLUDED.gift_wrap_fee,
			loyalty_rate = EXCLUDED.loyalty_rate,
			email_alerts = EXCLUDED.email_alerts,
			sms_alerts = EXCLUDED.sms_alerts,
			updated_at = now()
		RETURNING ` + settingsColumns
)

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository implements settings.Repository backed by PostgreSQL.
// The store has a single settings row with id 1.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns settings.ErrNotFound when the row has not been created yet.
func (r *SettingsRepository) Get(ctx context.Context) (*settings.StoreSettings, error) {
	rows, err := r.pool.Query(ctx, getSettingsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query settings")
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSettings)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, settings.ErrNotFound
		}
		return nil, errors.Wrap(err, "scan settings")
	}
	return &s, nil
}

// Upsert writes s to the settings row and replaces s with the stored row.
func (r *SettingsRepository) Upsert(ctx context.Context, s *settings.StoreSettings) error {
	pincodes := s.Pincodes
	if pincodes == nil {
		pincodes = []string{}
	}
	rows, err := r.pool.Query(ctx, upsertSettingsSQL,
		s.StoreName, s.SupportEmail, s.SupportPhone, s.StoreDescription, pincodes,
		s.ShippingCharge, s.FreeShippingThreshold, s.IsCodEnabled, s.IsStripeEnabled,
		s.EnableCodFee, string(s.CodFeeType), s.CodFeePercentage, s.CodFeeFixed, s.CodFeeMinOrder,
		s.GiftWrapFee, s.LoyaltyRate, s.EmailAlerts, s.SmsAlerts,
	)
	if err != nil {
		return errors.Wrap(err, "upsert settings")
	}
	stored, err := pgx.CollectExactlyOneRow(rows, scanSettings)
	if err != nil {
		return errors.Wrap(err, "upsert settings")
	}
	*s = stored
	return nil
}

func scanSettings(row pgx.CollectableRow) (settings.StoreSettings, error) {
	var (
		s       settings.StoreSettings
		feeType string
	)
	err := row.Scan(
		&s.StoreName, &s.SupportEmail, &s.SupportPhone, &s.StoreDescription, &s.Pincodes,
		&s.ShippingCharge, &s.FreeShippingThreshold, &s.IsCodEnabled, &s.IsStripeEnabled,
		&s.EnableCodFee, &feeType, &s.CodFeePercentage, &s.CodFeeFixed, &s.CodFeeMinOrder,
		&s.GiftWrapFee, &s.LoyaltyRate, &s.EmailAlerts, &s.SmsAlerts, &s.UpdatedAt,
	)
	s.CodFeeType = settings.FeeType(feeType)
	return s, err
}
