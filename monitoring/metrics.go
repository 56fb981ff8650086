package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// FallbackTotal counts operations served by the local cache after a
	// remote store failure.
	FallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datastore_fallback_total",
			Help: "Operations degraded to the local fallback store",
		},
		[]string{"collection", "operation"},
	)

	MigratedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_migrations_migrated_total",
			Help: "Lead records backfilled by migration sweeps",
		},
		[]string{"routine"},
	)
)

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(FallbackTotal)
	prometheus.MustRegister(MigratedRecords)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
