package middleware

import (
	"net/http"
	"time"

	"deca/pkg/metrics"

	"github.com/julienschmidt/httprouter"
)

// Instrument records request count and latency for one registered route.
// The route pattern, not the request path, is the label.
func Instrument(method, route string, h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		h(wrapped, r, ps)

		metrics.RecordHTTPRequest(method, route, wrapped.statusCode, time.Since(start))
	}
}
