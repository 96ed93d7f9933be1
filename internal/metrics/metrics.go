// Package metrics exposes Prometheus collectors for the poll cycle.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/five82/parkdash/internal/parking"
)

const namespace = "parkdash"

var (
	fetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_total",
		Help:      "Number of occupancy fetches by outcome",
	}, []string{"outcome"})
	cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Duration of a full fetch and render cycle",
		Buckets:   prometheus.DefBuckets,
	})
	stations = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stations",
		Help:      "Stations shown in the last successful cycle by status",
	}, []string{"status"})
	rejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_rejected_total",
		Help:      "Records excluded from the dashboard by reason",
	}, []string{"reason"})
	lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful cycle",
	})
)

func init() {
	prometheus.MustRegister(fetchTotal, cycleDuration, stations, rejectedTotal, lastSuccess)
}

// ObserveFetch counts one fetch and its cycle duration.
func ObserveFetch(d time.Duration, err error) {
	cycleDuration.Observe(d.Seconds())
	if err != nil {
		fetchTotal.WithLabelValues("error").Inc()
		return
	}
	fetchTotal.WithLabelValues("success").Inc()
	lastSuccess.Set(float64(time.Now().Unix()))
}

// RecordCycle publishes per-status gauges and rejection counts.
func RecordCycle(cards []parking.Card, rejected []parking.Rejected) {
	for status, n := range parking.Counts(cards) {
		stations.WithLabelValues(string(status)).Set(float64(n))
	}
	for _, r := range rejected {
		rejectedTotal.WithLabelValues(string(r.Reason)).Inc()
	}
}
