// Package middleware holds HTTP middleware specific to the API surface.
package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/tradequest/tradequest/internal/api/response"
	"github.com/tradequest/tradequest/internal/core"
)

// APIKeyAuth returns middleware that validates the X-API-Key header, or a
// bearer token in Authorization. If apiKey is empty, authentication is disabled.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-API-Key")
			if provided == "" {
				provided, _ = strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if provided == "" {
				response.Error(w, http.StatusUnauthorized,
					core.WrapError(core.ErrUnauthorized, errors.New("API key missing")))
				return
			}

			// constant time
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				response.Error(w, http.StatusUnauthorized, core.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
