package middleware

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestID tags each request with an ID, reusing the client's
// X-Request-Id when present and minting a UUID otherwise. The ID is stored
// under chi's request-id key so chi's GetReqID and logging.FromContext see it,
// and it is echoed back in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(chimw.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(chimw.RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), chimw.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
