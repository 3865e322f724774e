// Package httpapi exposes the gift identifier generator over HTTP.
package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type correlationIDKey struct{}

// correlationIDHeader is the header a caller can set to supply its own
// correlation ID; when absent, one is generated per request.
const correlationIDHeader = "X-Correlation-ID"

// withCorrelationID is middleware that ensures every request carries a
// correlation ID, both in its context (for structured logging) and
// echoed back in the response header.
func withCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(correlationIDHeader, id)
		ctx := context.WithValue(r.Context(), correlationIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// correlationID extracts the request's correlation ID from its context,
// returning "" if none is present.
func correlationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}
