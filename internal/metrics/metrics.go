// Package metrics holds Prometheus instruments that are used across the
// data layer and the HTTP surface.  All collectors are registered with the
// global registry, so importing a package that records a metric is enough
// to expose it on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FallbackTotal counts retrieval paths that failed and caused the
	// resolver to escalate to the next path.  "op" is the logical
	// operation, for example "posts.list"; "path" is the strategy name.
	FallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_fallback_total",
			Help: "Retrieval paths that failed and escalated to the next path.",
		}, []string{"op", "path"})

	// ExhaustedTotal counts operations whose entire strategy chain failed.
	ExhaustedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_exhausted_total",
			Help: "Operations for which every retrieval path failed.",
		}, []string{"op"})

	SeedServedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "query_seed_served_total",
			Help: "Responses assembled from the embedded seed dataset.",
		})

	// QueryDuration observes wall time per logical operation.  The "path"
	// label records which strategy answered, or "error" when none did.
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "query_duration_seconds",
			Help:    "Duration of data-layer operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "path"})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served, by route pattern and status.",
		}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"})

	ContactSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submissions by outcome.",
		}, []string{"outcome"})

	RealtimeEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_events_total",
			Help: "Change notifications received from the content channel.",
		})

	RealtimeReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_reconnects_total",
			Help: "Times the notification listener had to reconnect.",
		})

	// ImageProbesTotal counts image reachability probes by result:
	// ok, broken, superseded, or error.
	ImageProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_probes_total",
			Help: "Image reachability probes by result.",
		}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		FallbackTotal,
		ExhaustedTotal,
		SeedServedTotal,
		QueryDuration,
		HTTPRequestsTotal,
		HTTPDuration,
		ContactSubmissionsTotal,
		RealtimeEventsTotal,
		RealtimeReconnects,
		ImageProbesTotal,
	)
}
