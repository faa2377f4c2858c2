package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/mediqueue/internal/handler"
)

const readinessTimeout = 2 * time.Second

// Pinger is satisfied by *sqlx.DB and messaging.Broker.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a ping function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type Handler struct {
	deps     map[string]Pinger
	gatherer prometheus.Gatherer
}

func NewHandler(deps map[string]Pinger, gatherer prometheus.Gatherer) *Handler {
	return &Handler{deps: deps, gatherer: gatherer}
}

func (h *Handler) RegisterRoutes(r *handler.Routes) {
	health := r.Public.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
	r.Public.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	status := http.StatusOK
	for name, dep := range h.deps {
		if err := dep.PingContext(ctx); err != nil {
			checks[name] = "DOWN"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "UP"
	}

	overall := "UP"
	if status != http.StatusOK {
		overall = "DOWN"
	}
	c.JSON(status, gin.H{"status": overall, "checks": checks})
}
