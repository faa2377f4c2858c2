package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/mediqueue/internal/handler"
	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/service/auth"
	"github.com/jwalitptl/mediqueue/pkg/httputil"
)

type Handler struct {
	svc auth.AuthServicer
}

func NewHandler(svc auth.AuthServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *handler.Routes) {
	r.Public.POST("/auth/login", h.Login)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, tokens)
}
