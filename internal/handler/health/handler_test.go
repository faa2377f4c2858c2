package health

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/mediqueue/internal/handler/handlertest"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestReadinessCheck(t *testing.T) {
	reg := prometheus.NewRegistry()

	engine := handlertest.NewEngine(t, NewHandler(map[string]Pinger{
		"database": PingFunc(ok),
		"broker":   PingFunc(ok),
	}, reg))
	w := handlertest.Do(engine, http.MethodGet, "/api/v1/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP","checks":{"database":"UP","broker":"UP"}}`, w.Body.String())

	engine = handlertest.NewEngine(t, NewHandler(map[string]Pinger{
		"database": PingFunc(down),
	}, reg))
	w = handlertest.Do(engine, http.MethodGet, "/api/v1/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"DOWN","checks":{"database":"DOWN"}}`, w.Body.String())
}

func TestLivenessAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "mediqueue_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	engine := handlertest.NewEngine(t, NewHandler(nil, reg))

	w := handlertest.Do(engine, http.MethodGet, "/api/v1/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = handlertest.Do(engine, http.MethodGet, "/api/v1/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mediqueue_test_total 1")
}
