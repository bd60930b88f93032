package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitter_interface_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "twitter_interface_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	// Remote API metrics
	RemoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitter_interface_remote_calls_total",
			Help: "Total remote API calls",
		},
		[]string{"endpoint", "outcome"}, // outcome: "success" or "failure"
	)

	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "twitter_interface_remote_call_duration_seconds",
			Help:    "Remote API call latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	// Business metrics
	RefreshCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitter_interface_refresh_cycles_total",
			Help: "Total refresh cycles",
		},
		[]string{"scope", "outcome"}, // scope: "full" or "timeline"
	)

	StatusesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitter_interface_statuses_posted_total",
			Help: "Total status updates attempted",
		},
		[]string{"outcome"},
	)

	StreamSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "twitter_interface_stream_subscribers",
			Help: "Open snapshot event streams",
		},
	)
)
