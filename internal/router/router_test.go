package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/mediqueue/internal/handler"
	"github.com/jwalitptl/mediqueue/internal/middleware"
	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/pkg/auth"
)

type stubHandler struct{}

func (stubHandler) RegisterRoutes(r *handler.Routes) {
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.Public.GET("/doctors", ok)
	r.Staff.GET("/queue/:doctor_id", r.Doctor("doctor_id"), ok)
	r.Admin.GET("/dashboard/overview", ok)
}

func newTestRouter(t *testing.T) (*Router, auth.JWTService, *prometheus.Registry) {
	t.Helper()
	jwtSvc := auth.NewJWTService("0123456789abcdef", "mediqueue", time.Hour)
	reg := prometheus.NewRegistry()

	r := NewRouter(middleware.NewAuthMiddleware(jwtSvc), RouterConfig{
		Mode:           gin.TestMode,
		RequestTimeout: time.Second,
		Registerer:     reg,
	}, stubHandler{})
	r.Setup()
	return r, jwtSvc, reg
}

func TestRouter_AccessLevels(t *testing.T) {
	r, jwtSvc, _ := newTestRouter(t)

	admin, _, err := jwtSvc.GenerateAccessToken("admin", model.RoleAdmin, "")
	require.NoError(t, err)
	doctor, _, err := jwtSvc.GenerateAccessToken("drmehta", model.RoleDoctor, "doc-1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"public without token", "/api/v1/doctors", "", http.StatusOK},
		{"admin route without token", "/api/v1/dashboard/overview", "", http.StatusUnauthorized},
		{"admin route as doctor", "/api/v1/dashboard/overview", doctor, http.StatusForbidden},
		{"admin route as admin", "/api/v1/dashboard/overview", admin, http.StatusOK},
		{"own queue", "/api/v1/queue/doc-1", doctor, http.StatusOK},
		{"foreign queue", "/api/v1/queue/doc-9", doctor, http.StatusForbidden},
		{"unknown route", "/api/v1/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.Engine().ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRouter_HeadersAndMetrics(t *testing.T) {
	r, _, reg := newTestRouter(t)

	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0", w.Header().Get("X-API-Version"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))

	assert.Equal(t, float64(1), testutil.ToFloat64(
		r.metrics.requestTotal.WithLabelValues(http.MethodGet, "/api/v1/doctors", "200")))

	count, err := testutil.GatherAndCount(reg, "mediqueue_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
