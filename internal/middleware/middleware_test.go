package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/service"
)

func TestAPIKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/analyze", APIKey("s3cret"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or missing API key.")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	req.Header.Set(APIKeyHeader, "s3cret")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	open := gin.New()
	open.POST("/analyze", APIKey(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w = httptest.NewRecorder()
	open.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuditLogsSuccessfulTherapistActions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	router := gin.New()
	withTherapist := func(c *gin.Context) {
		c.Set(ContextTherapistKey, &models.TherapistCredential{Username: "drsmith"})
	}
	router.GET("/export", withTherapist, Audit(zap.New(core), "history.export"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/fail", withTherapist, Audit(zap.New(core), "alert.download"), func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/export", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	entries := logs.FilterMessage("therapist_audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "history.export", fields["action"])
	assert.Equal(t, "drsmith", fields["therapist"])
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}

	router := gin.New()
	router.Use(WithResponseMeta())
	router.GET("/", func(c *gin.Context) {
		SetWaiting(c, true)
		SetMeta(c, "count", 0)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, meta)
	assert.Equal(t, true, meta["waiting"])
	assert.Equal(t, 0, meta["count"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()

	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/alerts/:token", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/alerts/abc", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `path="/alerts/:token"`)
	assert.Contains(t, body, `path="unmatched"`)
	assert.NotContains(t, body, "/alerts/abc")
}
