package settings

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Provider resolves the active settings for callers that need a value object
// rather than a repository.
type Provider struct {
	repo Repository
}

// NewProvider creates a Provider backed by repo.
func NewProvider(repo Repository) *Provider {
	return &Provider{repo: repo}
}

// Current returns the stored settings, or Fallback() when the row is missing.
func (p *Provider) Current(ctx context.Context) (*StoreSettings, error) {
	s, err := p.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			zctx.From(ctx).Warn("Settings row missing, using fallback")
			fb := Fallback()
			return &fb, nil
		}
		return nil, errors.Wrap(err, "get settings")
	}
	return s, nil
}

// Save validates s and persists it. Pincodes are normalized in place.
func (p *Provider) Save(ctx context.Context, s *StoreSettings) error {
	s.Pincodes = NormalizePincodes(s.Pincodes)
	if err := s.Validate(); err != nil {
		return err
	}
	if err := p.repo.Upsert(ctx, s); err != nil {
		return errors.Wrap(err, "upsert settings")
	}
	zctx.From(ctx).Info("Settings saved",
		zap.Bool("cod_fee", s.EnableCodFee),
		zap.String("cod_fee_type", string(s.CodFeeType)),
	)
	return nil
}
