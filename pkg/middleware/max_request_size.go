package middleware

import (
	"net/http"

	apperrors "deca/pkg/errors"
	httputil "deca/pkg/http"
)

// MaxRequestSize caps the request body. Readers see *http.MaxBytesError
// once the limit is crossed; oversized declared lengths are refused upfront.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				httputil.WriteError(w, apperrors.PayloadTooLarge(limit))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
