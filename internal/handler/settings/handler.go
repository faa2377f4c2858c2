package settings

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/mediqueue/internal/handler"
	"github.com/jwalitptl/mediqueue/internal/model"
	settingsService "github.com/jwalitptl/mediqueue/internal/service/settings"
	"github.com/jwalitptl/mediqueue/pkg/httputil"
)

type Handler struct {
	service settingsService.SettingsServicer
}

func NewHandler(service settingsService.SettingsServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *handler.Routes) {
	r.Public.GET("/settings", h.GetSettings)
	r.Admin.PUT("/settings", h.SaveSettings)
}

func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.service.Load(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, settings)
}

func (h *Handler) SaveSettings(c *gin.Context) {
	var req model.Settings
	if !handler.BindJSON(c, &req) {
		return
	}

	settings, err := h.service.Save(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, settings)
}
