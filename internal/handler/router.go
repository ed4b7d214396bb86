package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/store-admin/pkg/health"
	"github.com/xenking/store-admin/pkg/httpmiddleware"
)

// NewRouter mounts the API and health endpoints. mws run inside the router,
// after route matching is available.
func NewRouter(h *Handler, hc *health.Health, mws ...httpmiddleware.Middleware) http.Handler {
	r := chi.NewRouter()
	r.Get("/livez", hc.LiveEndpoint)
	r.Get("/readyz", hc.ReadyEndpoint)

	r.Route("/api", func(r chi.Router) {
		r.Use(mws...)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "route not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.PutSettings)
			r.Post("/preview", h.PreviewSettings)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetOrder)
				r.Patch("/status", h.UpdateStatus)
				r.Patch("/payment-status", h.UpdatePaymentStatus)
				r.Get("/history", h.OrderHistory)
			})
		})
		r.Get("/stats", h.Stats)
		r.Get("/products/low-stock", h.LowStock)
	})
	return r
}
