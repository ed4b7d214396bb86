package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/store-admin/internal/domain/fee"
	"github.com/xenking/store-admin/internal/domain/settings"
)

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Current(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeSettings(e, s) })
}

// PutSettings handles PUT /api/settings. Fields missing from the body keep
// their current values.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	s, _, err := h.mergeSettings(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.settings.Save(r.Context(), s); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeSettings(e, s) })
}

// PreviewSettings handles POST /api/settings/preview. The body carries
// unsaved settings and an optional "subtotal"; nothing is persisted.
func (h *Handler) PreviewSettings(w http.ResponseWriter, r *http.Request) {
	s, sample, err := h.mergeSettings(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if sample == nil {
		sample = &h.cfg.PreviewSubtotal
	}
	s.Pincodes = settings.NormalizePincodes(s.Pincodes)
	if err := s.Validate(); err != nil {
		fail(w, r, err)
		return
	}
	b, err := fee.Preview(s, sample)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("settings")
		encodeSettings(e, s)
		e.FieldStart("breakdown")
		encodeBreakdown(e, &b)
		e.FieldStart("free_shipping_enabled")
		e.Bool(s.FreeShippingEnabled())
		e.ObjEnd()
	})
}

// mergeSettings decodes the request body onto a copy of the current
// settings. A "subtotal" key is returned separately, nil when absent.
func (h *Handler) mergeSettings(w http.ResponseWriter, r *http.Request) (*settings.StoreSettings, *decimal.Decimal, error) {
	current, err := h.settings.Current(r.Context())
	if err != nil {
		return nil, nil, err
	}
	body, err := readBody(w, r)
	if err != nil {
		return nil, nil, err
	}

	s := *current
	var subtotal *decimal.Decimal
	d := jx.DecodeBytes(body)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		k := string(key)
		if k == "subtotal" {
			v, err := decodeDecimal(d)
			if err != nil {
				return badRequest("field subtotal: %v", err)
			}
			subtotal = &v
			return nil
		}
		ok, err := decodeSettingsField(d, k, &s)
		if err != nil {
			return err
		}
		if !ok {
			return d.Skip()
		}
		return nil
	}); err != nil {
		if isBadRequest(err) {
			return nil, nil, err
		}
		return nil, nil, badRequest("decode settings: %v", err)
	}
	if err := expectEOF(d); err != nil {
		return nil, nil, err
	}
	if subtotal != nil && subtotal.IsNegative() {
		return nil, nil, badRequest("subtotal must not be negative")
	}
	return &s, subtotal, nil
}
