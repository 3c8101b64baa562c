package handler

import (
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/steelhaven/storefront/internal/domain/auth"
)

const apiKeyHeader = "X-API-Key"

// requireAPIKey guards a route subtree behind HMAC-SHA256 hashed API keys.
// The raw key arrives in the X-API-Key header (or as a Bearer token); it is
// hashed under the pepper, looked up, compared in constant time, and finally
// checked for the required scope.
func (h *Handler) requireAPIKey(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(apiKeyHeader)
			if key == "" {
				key = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if key == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			hash := auth.HashKey(key, h.pepper)
			info, err := h.apikeys.FindByHash(r.Context(), hash)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			// Constant-time comparison guards against timing side-channels
			// even though the lookup already succeeded: the stored hash could
			// differ from what we computed if the repository returns a stale
			// or wrong row.
			computed, err := hex.DecodeString(hash)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			stored, err := hex.DecodeString(info.KeyHash)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if subtle.ConstantTimeCompare(computed, stored) != 1 {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if !info.HasScope(scope) {
				respondError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
