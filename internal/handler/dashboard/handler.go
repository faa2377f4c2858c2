package dashboard

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/mediqueue/internal/handler"
	dashboardService "github.com/jwalitptl/mediqueue/internal/service/dashboard"
	"github.com/jwalitptl/mediqueue/pkg/httputil"
)

type Handler struct {
	service dashboardService.DashboardServicer
}

func NewHandler(service dashboardService.DashboardServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *handler.Routes) {
	d := r.Admin.Group("/dashboard")
	{
		d.GET("/overview", h.Overview)
		d.GET("/departments", h.Departments)
	}
}

func (h *Handler) Overview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, overview)
}

func (h *Handler) Departments(c *gin.Context) {
	departments, err := h.service.Departments(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, departments)
}
