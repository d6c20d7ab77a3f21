package middleware

import "net/http"

// CORS header values sent on every response.
const (
	AllowOrigin  = "*"
	AllowMethods = "GET, POST, OPTIONS"
	AllowHeaders = "*"
)

// CORS returns middleware that grants unrestricted cross-origin access.
// Headers are set before the next handler runs so they survive error
// responses written by http.Error and http.FileServer. Preflight requests are
// answered here with an empty 200 and never reach the next handler.
func CORS() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", AllowOrigin)
			h.Set("Access-Control-Allow-Methods", AllowMethods)
			h.Set("Access-Control-Allow-Headers", AllowHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
