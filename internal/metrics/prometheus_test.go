package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/domain"
)

func TestRecordParse(t *testing.T) {
	beforeSuccess := testutil.ToFloat64(parseTotal.WithLabelValues("success"))
	beforeKnown := testutil.ToFloat64(parseVariantsTotal.WithLabelValues(AnnotationKnown))
	beforeGeneOnly := testutil.ToFloat64(parseVariantsTotal.WithLabelValues(AnnotationGeneOnly))
	beforeErrors := testutil.ToFloat64(parseLineErrorsTotal)

	RecordParse(domain.ParseResult{
		Success: true,
		Variants: []domain.AnnotatedVariant{
			{RSID: "rs1799853", ClinicalSignificance: "Intermediate metabolizer"},
			{RSID: "unknown", ClinicalSignificance: domain.GeneOnlySignificance},
		},
		Errors: []string{"Line 3: insufficient fields"},
	})

	assert.Equal(t, beforeSuccess+1, testutil.ToFloat64(parseTotal.WithLabelValues("success")))
	assert.Equal(t, beforeKnown+1, testutil.ToFloat64(parseVariantsTotal.WithLabelValues(AnnotationKnown)))
	assert.Equal(t, beforeGeneOnly+1, testutil.ToFloat64(parseVariantsTotal.WithLabelValues(AnnotationGeneOnly)))
	assert.Equal(t, beforeErrors+1, testutil.ToFloat64(parseLineErrorsTotal))
}

func TestAnnotationKind(t *testing.T) {
	assert.Equal(t, AnnotationNovel, AnnotationKind(domain.AnnotatedVariant{ClinicalSignificance: domain.NovelVariantSignificance}))
	assert.Equal(t, AnnotationGeneOnly, AnnotationKind(domain.AnnotatedVariant{ClinicalSignificance: domain.GeneOnlySignificance}))
	assert.Equal(t, AnnotationKnown, AnnotationKind(domain.AnnotatedVariant{ClinicalSignificance: "Critical toxicity risk"}))
}

func TestRecordExplanationAndLLM(t *testing.T) {
	before := testutil.ToFloat64(explanationsTotal.WithLabelValues("fallback"))
	beforeFailures := testutil.ToFloat64(llmFailuresTotal.WithLabelValues("timeout"))

	RecordExplanation(domain.SourceFallback)
	RecordLLMFailure("timeout")
	RecordLLMRequest(150 * time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(explanationsTotal.WithLabelValues("fallback")))
	assert.Equal(t, beforeFailures+1, testutil.ToFloat64(llmFailuresTotal.WithLabelValues("timeout")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(Handler()))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "204"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "204")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "pgx_http_requests_total"))
}
