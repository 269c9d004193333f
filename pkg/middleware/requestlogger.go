package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ahmad5farah/AmaKart/pkg/logger"
)

// RequestLogger builds a request-scoped logger from whatever ids earlier
// middleware put in the context (correlation, visitor, user, trace, span) and
// stores it with logger.NewContext for handlers and services.
//
// Mount it after RequestLogging, Tracing and the session middleware.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := UserIDFromContext(ctx); userID != "" && logger.UserIDFromContext(ctx) == "" {
				ctx = logger.WithUserID(ctx, userID)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
