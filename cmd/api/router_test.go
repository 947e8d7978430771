package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/scamwatch/internal/incidents"
	"github.com/richxcame/scamwatch/internal/risk"
	"github.com/richxcame/scamwatch/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyRepository struct{}

func (emptyRepository) ListIncidents(context.Context, incidents.ListParams) ([]risk.Incident, int64, error) {
	return []risk.Incident{}, 0, nil
}

func (emptyRepository) GetIncidentByID(context.Context, string) (*risk.Incident, error) {
	return nil, errors.New("not stored")
}

func (emptyRepository) UpdateRiskScores(context.Context, map[string]risk.RiskScore) (int64, error) {
	return 0, nil
}

func setupRouter(t *testing.T, checks map[string]func() error) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load(serviceName)
	require.NoError(t, err)
	cfg.Server.CORSOrigins = "http://localhost:3000, https://scamwatch.example"

	service := incidents.NewService(emptyRepository{}, risk.NewEngine(risk.DefaultConfig()), cfg.Risk)
	return newRouter(cfg, incidents.NewHandler(service), checks)
}

func TestCORSOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, corsOrigins(" http://a ,,http://b"))
	assert.Empty(t, corsOrigins(""))
}

func TestRouter_Health(t *testing.T) {
	router := setupRouter(t, map[string]func() error{"database": func() error { return nil }})

	for _, path := range []string{"/healthz", "/health/live", "/health/ready"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_ReadinessFailure(t *testing.T) {
	router := setupRouter(t, map[string]func() error{"database": func() error { return errors.New("down") }})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	router := setupRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_APIRoutes(t *testing.T) {
	router := setupRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/statistics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/risk", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/risk", nil)
	req.Header.Set("Origin", "https://scamwatch.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://scamwatch.example", w.Header().Get("Access-Control-Allow-Origin"))
}
