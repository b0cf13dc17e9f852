package query

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tenantadmin/internal/domain"
)

var queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "tenantadmin",
	Name:      "query_duration_seconds",
	Help:      "Latency of paginated list queries by collection and outcome.",
	Buckets:   prometheus.DefBuckets,
}, []string{"collection", "outcome"})

func observe(collection string, err error, start time.Time) {
	outcome := "ok"
	switch {
	case err == nil:
	case domain.IsCanceled(err):
		outcome = "cancelled"
	default:
		outcome = "error"
	}
	queryDuration.WithLabelValues(collection, outcome).Observe(time.Since(start).Seconds())
}
