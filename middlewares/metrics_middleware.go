package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"clinicacrm/monitoring"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware records request counts and latency per route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if pattern := r.Pattern; pattern != "" {
			path = pattern
		}
		monitoring.RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		monitoring.RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
