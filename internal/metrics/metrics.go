// Package metrics defines the Prometheus collectors exported by the trip ledger.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every collector. All methods are safe on a nil *Registry,
// so components can be built without metrics in tests.
type Registry struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ReportsRenderedTotal *prometheus.CounterVec
	ReportRenderDuration prometheus.Histogram
	ReportRows           prometheus.Histogram

	PlateCacheTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Registry {
	f := promauto.With(reg)
	return &Registry{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "triplog_http_requests_total",
				Help: "Total HTTP requests by route pattern, method, and status code",
			},
			[]string{"route", "method", "status_code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "triplog_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
		ReportsRenderedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "triplog_reports_rendered_total",
				Help: "Workbooks rendered, by outcome",
			},
			[]string{"outcome"},
		),
		ReportRenderDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "triplog_report_render_duration_seconds",
				Help:    "Workbook render time in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		ReportRows: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "triplog_report_rows",
				Help:    "Trips per rendered workbook",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		PlateCacheTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "triplog_plate_cache_lookups_total",
				Help: "Distinct-plate cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveRequest records one completed HTTP request.
func (r *Registry) ObserveRequest(route, method, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveRender records one report render attempt.
func (r *Registry) ObserveRender(rows int, d time.Duration, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.ReportsRenderedTotal.WithLabelValues("error").Inc()
		return
	}
	r.ReportsRenderedTotal.WithLabelValues("ok").Inc()
	r.ReportRenderDuration.Observe(d.Seconds())
	r.ReportRows.Observe(float64(rows))
}

// ObservePlateCache records a cache hit or miss for the plate list.
func (r *Registry) ObservePlateCache(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.PlateCacheTotal.WithLabelValues(result).Inc()
}
