// Package middleware holds the http.Handler wrappers applied to every request.
package middleware

import (
	"net/http"
	"slices"
)

// Chain wraps h with mw. mw[0] is outermost and sees the request first.
func Chain(h http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for _, wrap := range slices.Backward(mw) {
		h = wrap(h)
	}
	return h
}
