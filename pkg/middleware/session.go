package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ahmad5farah/AmaKart/pkg/logger"
)

// SessionHeader names the browser's persistent state bucket.
const SessionHeader = "X-Session-ID"

// VisitorSession makes sure every request has a visitor id. A missing or
// malformed X-Session-ID gets a fresh one, echoed back so the client can keep
// it. The id is stored with logger.WithVisitorID.
func VisitorSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(SessionHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithVisitorID(r.Context(), id)))
	})
}
