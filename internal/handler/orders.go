package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/xenking/store-admin/internal/domain/order"
)

// ListOrders handles GET /api/orders?status=&limit=.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := order.Filter{Status: order.Status(q.Get("status"))}
	limit, err := h.parseLimit(q.Get("limit"))
	if err != nil {
		fail(w, r, err)
		return
	}
	f.Limit = limit

	orders, err := h.orders.List(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range orders {
			encodeOrder(e, &orders[i])
		}
		e.ArrEnd()
	})
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	st, err := h.settings.Current(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	d, err := h.orders.Detail(r.Context(), chi.URLParam(r, "id"), st)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("order")
		encodeOrder(e, d.Order)
		e.FieldStart("timeline")
		encodeTimeline(e, d.Timeline)
		e.FieldStart("can_invoice")
		e.Bool(d.CanInvoice)
		e.FieldStart("can_refund")
		e.Bool(d.CanRefund)
		e.FieldStart("is_cod")
		e.Bool(d.IsCOD)
		e.FieldStart("serviceable")
		e.Bool(d.Serviceable)
		e.FieldStart("breakdown")
		encodeBreakdown(e, d.Breakdown)
		e.ObjEnd()
	})
}

// UpdateStatus handles PATCH /api/orders/{id}/status with
// {"status": "...", "note": "..."}.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	value, note, err := decodeStatusBody(w, r, "status")
	if err != nil {
		fail(w, r, err)
		return
	}
	status, err := order.ParseStatus(value)
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx := r.Context()
	if note != "" {
		ctx = order.WithNote(ctx, note)
	}
	o, err := h.orders.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	updated, err := h.orders.UpdateStatus(ctx, o, status)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOrderWithTimeline(w, updated)
}

// UpdatePaymentStatus handles PATCH /api/orders/{id}/payment-status with
// {"payment_status": "...", "note": "..."}.
func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	value, note, err := decodeStatusBody(w, r, "payment_status")
	if err != nil {
		fail(w, r, err)
		return
	}
	status, err := order.ParsePaymentStatus(value)
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx := r.Context()
	if note != "" {
		ctx = order.WithNote(ctx, note)
	}
	o, err := h.orders.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	updated, err := h.orders.UpdatePaymentStatus(ctx, o, status)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOrderWithTimeline(w, updated)
}

// OrderHistory handles GET /api/orders/{id}/history.
func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.orders.Get(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	changes, err := h.orders.History(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, c := range changes {
			encodeChange(e, c)
		}
		e.ArrEnd()
	})
}

func writeOrderWithTimeline(w http.ResponseWriter, o *order.Order) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("order")
		encodeOrder(e, o)
		e.FieldStart("timeline")
		encodeTimeline(e, order.DeriveTimeline(o.Status))
		e.ObjEnd()
	})
}

// decodeStatusBody reads the value under key and an optional note.
func decodeStatusBody(w http.ResponseWriter, r *http.Request, key string) (value, note string, err error) {
	body, err := readBody(w, r)
	if err != nil {
		return "", "", err
	}
	var found bool
	d := jx.DecodeBytes(body)
	if err := d.ObjBytes(func(d *jx.Decoder, k []byte) error {
		switch string(k) {
		case key:
			v, err := d.Str()
			if err != nil {
				return err
			}
			value, found = v, true
		case "note":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Str()
			if err != nil {
				return err
			}
			note = strings.TrimSpace(v)
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return "", "", badRequest("decode body: %v", err)
	}
	if err := expectEOF(d); err != nil {
		return "", "", err
	}
	if !found {
		return "", "", badRequest("%s is required", key)
	}
	return value, note, nil
}

// parseLimit caps the result at MaxListLimit. An empty or zero value means
// MaxListLimit.
func (h *Handler) parseLimit(raw string) (int, error) {
	if raw == "" {
		return h.cfg.MaxListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest("invalid limit %q", raw)
	}
	if n == 0 {
		return h.cfg.MaxListLimit, nil
	}
	return min(n, h.cfg.MaxListLimit), nil
}
