package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/goforscrim/scrimsync/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// requestID tags every response with a request id, keeping an id supplied
// by the caller when present.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// logRequests logs each request at debug level.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("HTTP %s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
