// Package httpmiddleware contains net/http middleware shared by the admin
// server: panic recovery, request IDs, request-scoped logging, CORS and
// OpenTelemetry instrumentation.
package httpmiddleware

import "net/http"

// Middleware wraps an http.Handler. It has the same shape as chi middleware.
type Middleware = func(http.Handler) http.Handler

// Wrap applies middlewares to h so that the first one listed is outermost.
func Wrap(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
