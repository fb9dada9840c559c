package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

// VisitRecorder persists a page view.
type VisitRecorder interface {
	Record(ctx context.Context, ip string) error
}

// RecordVisit logs one visit per request by client IP. Failures are logged
// and never affect the response. Admin traffic is not counted.
func RecordVisit(rec VisitRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdmin(r.Context()) {
				if err := rec.Record(r.Context(), ClientIP(r)); err != nil {
					slog.Warn("visit not recorded", "error", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
