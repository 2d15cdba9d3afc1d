package middleware

import (
	"mime"
	"net/http"

	apperrors "deca/pkg/errors"
	httputil "deca/pkg/http"
	"deca/pkg/logger"
)

// ContentTypeValidation rejects bodies the intake cannot decode. Form posts
// are accepted because some form tools only send urlencoded data.
func ContentTypeValidation(log *logger.Logger, allowed ...string) func(http.Handler) http.Handler {
	if len(allowed) == 0 {
		allowed = []string{httputil.ContentTypeJSON, httputil.ContentTypeForm}
	}
	accept := make(map[string]bool, len(allowed))
	for _, ct := range allowed {
		accept[ct] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r.Method) {
				contentType := extractContentType(r.Header.Get("Content-Type"))
				if !accept[contentType] {
					log.Warn("Invalid Content-Type header",
						"request_id", RequestID(r.Context()),
						"content_type", contentType,
						"path", r.URL.Path,
						"method", r.Method,
					)
					httputil.WriteError(w, apperrors.UnsupportedMediaType(contentType))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresContentType(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func extractContentType(header string) string {
	if header == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return mediaType
}
