package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	apperrors "deca/pkg/errors"
	httputil "deca/pkg/http"
	"deca/pkg/logger"
)

const APIKeyHeader = "x-api-key"

// APIKey admits requests whose x-api-key header matches expected. Both sides
// are hashed first so the comparison time does not depend on key length.
func APIKey(expected string, log *logger.Logger) func(http.Handler) http.Handler {
	want := sha256.Sum256([]byte(expected))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(APIKeyHeader)
			got := sha256.Sum256([]byte(provided))

			if provided == "" || subtle.ConstantTimeCompare(want[:], got[:]) != 1 {
				log.Warn("API key verification failed",
					"request_id", RequestID(r.Context()),
					"key_present", provided != "",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				httputil.WriteError(w, apperrors.Unauthorized("Invalid or missing API key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
