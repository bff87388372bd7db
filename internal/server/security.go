// security.go - CORS and response-header middleware
package server

import "net/http"

// corsMiddleware answers preflights and attaches CORS headers to every
// response. The recording front-end is served from a different origin
// (study hosting vs. this backend), so the surface must be openly callable;
// there are no credentials to protect.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")

		// Prevent MIME sniffing; don't leak study URLs via referrers.
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
