package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += int64(n)
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Logging returns middleware that writes one access log line per request.
// Server errors are additionally reported at warn level, at most a few times
// per interval.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	serverErrors := &rate.Sometimes{First: 5, Interval: 10 * time.Second}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := uuid.NewString()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request",
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path, //nolint:gosec // logged verbatim, not interpreted
				"status", status,
				"bytes", rec.bytes,
				"duration", time.Since(start),
			)
			if status >= http.StatusInternalServerError {
				serverErrors.Do(func() {
					logger.Warn("server error", "request_id", id, "path", r.URL.Path, "status", status)
				})
			}
		})
	}
}
