// Package handlertest wires handlers onto a bare gin engine for tests.
package handlertest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/mediqueue/internal/handler"
	"github.com/jwalitptl/mediqueue/internal/middleware"
)

// Envelope mirrors the JSON response shape.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NewEngine registers h with no authentication in front of any group.
func NewEngine(t *testing.T, h handler.Handler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	engine := gin.New()
	api := engine.Group("/api/v1")
	h.RegisterRoutes(&handler.Routes{
		Public: api,
		Staff:  api.Group(""),
		Admin:  api.Group(""),
		Doctor: func(string) gin.HandlerFunc { return func(c *gin.Context) { c.Next() } },
	})
	return engine
}

// Do performs a request with an optional JSON body.
func Do(engine http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// Decode unmarshals the envelope and, when out is non-nil, its data.
func Decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}
