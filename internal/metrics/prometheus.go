package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pharmaguard-server/internal/domain"
)

// Annotation labels for parsed variants
const (
	AnnotationKnown    = "known"
	AnnotationNovel    = "novel"
	AnnotationGeneOnly = "gene_only"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgx_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pgx_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pgx_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Parser metrics
	parseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgx_parse_total",
			Help: "Total number of variant-call files parsed",
		},
		[]string{"outcome"},
	)

	parseVariantsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgx_parse_variants_total",
			Help: "Total number of annotated variants by annotation kind",
		},
		[]string{"annotation"},
	)

	parseLineErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pgx_parse_line_errors_total",
			Help: "Total number of data lines rejected with a diagnostic",
		},
	)

	// Explanation metrics
	explanationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgx_explanations_total",
			Help: "Total number of explanations served by source",
		},
		[]string{"source"},
	)

	llmFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgx_llm_failures_total",
			Help: "Total number of failed completion requests by reason",
		},
		[]string{"reason"},
	)

	llmRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pgx_llm_request_duration_seconds",
			Help:    "Completion request duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency by route template
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordParse records one parse outcome and its variant and diagnostic counts
func RecordParse(result domain.ParseResult) {
	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	parseTotal.WithLabelValues(outcome).Inc()
	parseLineErrorsTotal.Add(float64(len(result.Errors)))

	for _, v := range result.Variants {
		parseVariantsTotal.WithLabelValues(AnnotationKind(v)).Inc()
	}
}

// AnnotationKind labels a variant as known, novel or gene-only
func AnnotationKind(v domain.AnnotatedVariant) string {
	switch v.ClinicalSignificance {
	case domain.GeneOnlySignificance:
		return AnnotationGeneOnly
	case domain.NovelVariantSignificance:
		return AnnotationNovel
	default:
		return AnnotationKnown
	}
}

// RecordExplanation records an explanation served from source
func RecordExplanation(source domain.ExplanationSource) {
	explanationsTotal.WithLabelValues(string(source)).Inc()
}

// RecordLLMRequest records a completion round trip
func RecordLLMRequest(duration time.Duration) {
	llmRequestDuration.Observe(duration.Seconds())
}

// RecordLLMFailure records a failed completion request
func RecordLLMFailure(reason string) {
	llmFailuresTotal.WithLabelValues(reason).Inc()
}
