package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gavelworks/auctiondesk/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags every request with a uuid, honoring an inbound header only
// when it is itself a uuid so callers cannot inject arbitrary log fields.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(reqID); err != nil {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
