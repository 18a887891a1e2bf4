// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tracknfresh",
			Name:      "http_requests_total",
			Help:      "Page and form requests served, by route name and status code.",
		},
		[]string{"route", "status"},
	)

	foodServiceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tracknfresh",
			Name:      "food_service_requests_total",
			Help:      "Calls made to the remote food service, by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	foodServiceRequestSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tracknfresh",
			Name:      "food_service_request_seconds",
			Help:      "Latency of remote food service calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	dependencyUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tracknfresh",
			Name:      "dependency_up",
			Help:      "1 when the last probe of a dependency succeeded.",
		},
		[]string{"dependency"},
	)
)

// ObserveHTTP counts one served request.
func ObserveHTTP(route string, status int) {
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveFoodCall records the outcome and latency of a food service call.
func ObserveFoodCall(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	foodServiceRequestsTotal.WithLabelValues(op, outcome).Inc()
	foodServiceRequestSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// SetDependencyUp records the latest probe result of a dependency.
func SetDependencyUp(name string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	dependencyUp.WithLabelValues(name).Set(v)
}

// Handler exposes the default registry.
func Handler() http.Handler { return promhttp.Handler() }
