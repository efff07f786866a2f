package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/middleware"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/repository"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/service"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/storage"
)

const testPrefix = "/api/v1"

type therapistFixture struct {
	router  *gin.Engine
	history *service.HistoryService
	alerts  *service.AlertService
}

func newTherapistFixture(t *testing.T) *therapistFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	credPath := filepath.Join(dir, "therapists.csv")
	content := "username,password,therapist id,therapist_name,first_responder\n" +
		"drsmith,plain-secret,T-100,Dr. Smith,no\n" +
		"responder,other-secret,T-200,Sam,yes\n"
	require.NoError(t, os.WriteFile(credPath, []byte(content), 0o600))

	metrics := service.NewMetricsService()
	auth := service.NewAuthService(repository.NewTherapistRepository(credPath), nil, metrics, nil)
	history := service.NewHistoryService(10)
	alerts := service.NewAlertService(
		storage.NewLocalStorage(filepath.Join(dir, "alerts"), 0o600),
		storage.NewSignedURLSigner("handler-secret", time.Minute),
		metrics, nil,
		service.AlertConfig{Enabled: true, APIPrefix: testPrefix},
	)
	cookie := middleware.CookieOptions{Name: "therapist_session"}

	router := gin.New()
	RegisterRoutes(router, Routes{
		Prefix:    testPrefix,
		Cookie:    cookie,
		Sessions:  auth,
		Therapist: NewTherapistHandler(auth, service.NewDashboardService(history, alerts, nil), service.NewExportService(history, nil, nil, nil), alerts, cookie),
		Metrics:   NewMetricsHandler(metrics, nil),
	})
	return &therapistFixture{router: router, history: history, alerts: alerts}
}

func (f *therapistFixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *therapistFixture) login(t *testing.T, username, password string) string {
	t.Helper()
	w := f.do(t, http.MethodPost, testPrefix+"/therapist/login", `{"username":"`+username+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data struct {
			Token     string `json:"token"`
			Therapist struct {
				Username string `json:"username"`
			} `json:"therapist"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, username, body.Data.Therapist.Username)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, body.Data.Token, cookies[0].Value)
	return body.Data.Token
}

func (f *therapistFixture) seed(t *testing.T) {
	t.Helper()
	f.history.Record(models.SourceAPI, "900000001", "calm week", &models.AnalysisResult{
		MentalHealth: models.NewScoreSet(map[string]float64{"Normal": 90}),
	})
	record, err := f.alerts.Seal("sealed submission text")
	require.NoError(t, err)
	f.history.Record(models.SourceAPI, "900000002", "sealed submission text", &models.AnalysisResult{
		MentalHealth: models.NewScoreSet(map[string]float64{"Suicidal": 60}),
		Alert:        record,
	})
}

type dashboardBody struct {
	Data struct {
		Heading string `json:"heading"`
		Entries []struct {
			StudentID        string `json:"student_id"`
			AlertDownloadURL string `json:"alert_download_url"`
		} `json:"entries"`
	} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}

func TestTherapistLoginFailures(t *testing.T) {
	f := newTherapistFixture(t)

	w := f.do(t, http.MethodPost, testPrefix+"/therapist/login", `{"username":"drsmith","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, testPrefix+"/therapist/login", `{"username":"drsmith"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTherapistDashboardWaitingWhenEmpty(t *testing.T) {
	f := newTherapistFixture(t)
	token := f.login(t, "drsmith", "plain-secret")

	w := f.do(t, http.MethodGet, testPrefix+"/therapist/dashboard", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	var body dashboardBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Therapist Review Board", body.Data.Heading)
	assert.Empty(t, body.Data.Entries)
	assert.Equal(t, true, body.Meta["waiting"])
}

func TestTherapistDashboardAndAlertDownload(t *testing.T) {
	f := newTherapistFixture(t)
	f.seed(t)
	token := f.login(t, "responder", "other-secret")

	w := f.do(t, http.MethodGet, testPrefix+"/therapist/dashboard", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	var body dashboardBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "First Responder Review Board", body.Data.Heading)
	assert.Equal(t, false, body.Meta["waiting"])
	require.Len(t, body.Data.Entries, 1)
	assert.Equal(t, "900000002", body.Data.Entries[0].StudentID)

	link := body.Data.Entries[0].AlertDownloadURL
	require.True(t, strings.HasPrefix(link, testPrefix+"/therapist/alerts/download/"), link)

	w = f.do(t, http.MethodGet, link, "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".enc")
	assert.NotContains(t, w.Body.String(), "sealed submission text")

	w = f.do(t, http.MethodGet, link, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodGet, link+"x", "", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTherapistExportHistory(t *testing.T) {
	f := newTherapistFixture(t)
	f.seed(t)
	token := f.login(t, "drsmith", "plain-secret")

	w := f.do(t, http.MethodGet, testPrefix+"/therapist/history/export?format=csv", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "analysis_history_")
	assert.Contains(t, w.Body.String(), "900000001")
	assert.NotContains(t, w.Body.String(), "calm week")

	w = f.do(t, http.MethodGet, testPrefix+"/therapist/history/export?format=pdf", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	w = f.do(t, http.MethodGet, testPrefix+"/therapist/history/export?format=docx", "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTherapistLogout(t *testing.T) {
	f := newTherapistFixture(t)
	token := f.login(t, "drsmith", "plain-secret")

	w := f.do(t, http.MethodPost, testPrefix+"/therapist/logout", "", token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, testPrefix+"/therapist/dashboard", "", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, testPrefix+"/therapist/logout", "", token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"roster": func() error { return errors.New("roster file missing") },
	})

	router := gin.New()
	RegisterRoutes(router, Routes{Prefix: testPrefix, Metrics: handler})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "roster file missing")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
