package middleware

import (
	"net/http"
)

// HTMX records whether the request came from an htmx form. The checkout and
// cart handlers answer htmx requests with status fragments and HX-* headers,
// and everything else with full-page redirects.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromHTMX := r.Header.Get("HX-Request") == "true"
		next.ServeHTTP(w, r.WithContext(WithHTMX(r.Context(), fromHTMX)))
	})
}
