package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	applogger "github.com/tstore-shop/account-service/app/logger"
)

// RequestIDTracing propagates the chi request ID into the response header and
// attaches a request-scoped zerolog logger to the context.
func RequestIDTracing() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := chimw.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			log := applogger.WithRequestID(requestID)
			ctx := log.WithContext(r.Context())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
