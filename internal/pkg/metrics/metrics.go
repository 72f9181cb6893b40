// Package metrics provides Prometheus metrics definitions.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.mongodb.org/mongo-driver/mongo"
)

const namespace = "hatbajar"

var (
	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "status_code"},
	)

	// StoreUp reports whether the document store answers pings.
	StoreUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "up",
			Help:      "Whether the document store responds to ping (1) or not (0)",
		},
	)

	// AdsExpired counts advertisements swept to expired by the background worker.
	AdsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ads",
			Name:      "expired_total",
			Help:      "Advertisements marked expired by the expiry worker",
		},
	)
)

// RecordStorePing probes the Mongo client and updates the StoreUp gauge.
func RecordStorePing(ctx context.Context, client *mongo.Client) {
	if err := client.Ping(ctx, nil); err != nil {
		StoreUp.Set(0)
		return
	}
	StoreUp.Set(1)
}
