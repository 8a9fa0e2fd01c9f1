package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autord_exports_total",
			Help: "Total number of slide exports by layout and result",
		},
		[]string{"layout", "result"},
	)

	exportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autord_export_duration_seconds",
			Help:    "Slide export duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"layout"},
	)

	templateOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autord_template_operations_total",
			Help: "Total number of template storage operations",
		},
		[]string{"op", "result"},
	)

	briefConversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autord_brief_conversions_total",
			Help: "Brief derivations by source (object, json, markdown) and result",
		},
		[]string{"source", "result"},
	)

	previewsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "autord_previews_active",
			Help: "Number of preview handles currently held",
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autord_http_requests_total",
			Help: "Total number of web UI requests",
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(exportsTotal)
	prometheus.MustRegister(exportDuration)
	prometheus.MustRegister(templateOpsTotal)
	prometheus.MustRegister(briefConversionsTotal)
	prometheus.MustRegister(previewsActive)
	prometheus.MustRegister(httpRequestsTotal)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// RecordExport records one export attempt.
func RecordExport(layout string, ok bool, seconds float64) {
	exportsTotal.WithLabelValues(layout, result(ok)).Inc()
	exportDuration.WithLabelValues(layout).Observe(seconds)
}

// RecordTemplateOp records a template storage operation.
func RecordTemplateOp(op string, ok bool) {
	templateOpsTotal.WithLabelValues(op, result(ok)).Inc()
}

// RecordBrief records a brief parse or markdown conversion.
func RecordBrief(source string, ok bool) {
	briefConversionsTotal.WithLabelValues(source, result(ok)).Inc()
}

// SetPreviewsActive updates the preview handle gauge.
func SetPreviewsActive(n int) {
	previewsActive.Set(float64(n))
}

// RecordHTTPRequest records a web UI request.
func RecordHTTPRequest(method, route string, status int) {
	httpRequestsTotal.WithLabelValues(method, route, http.StatusText(status)).Inc()
}
