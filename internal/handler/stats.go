package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
)

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	d, err := h.stats.Dashboard(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("total_orders")
		e.Int64(d.TotalOrders)
		e.FieldStart("total_revenue")
		encodeDecimal(e, d.TotalRevenue)
		e.FieldStart("pending_orders")
		e.Int64(d.PendingOrders)
		e.FieldStart("low_stock_count")
		e.Int64(d.LowStockCount)
		e.FieldStart("recent_orders")
		e.ArrStart()
		for i := range d.RecentOrders {
			encodeOrder(e, &d.RecentOrders[i])
		}
		e.ArrEnd()
		e.FieldStart("low_stock")
		e.ArrStart()
		for _, p := range d.LowStock {
			encodeProduct(e, p)
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

// LowStock handles GET /api/products/low-stock?threshold=&limit=.
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	threshold := h.cfg.LowStockThreshold
	if raw := q.Get("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fail(w, r, badRequest("invalid threshold %q", raw))
			return
		}
		threshold = n
	}
	limit, err := h.parseLimit(q.Get("limit"))
	if err != nil {
		fail(w, r, err)
		return
	}

	products, err := h.products.LowStock(r.Context(), threshold, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, p := range products {
			encodeProduct(e, p)
		}
		e.ArrEnd()
	})
}
