package token

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/mediqueue/internal/handler"
	"github.com/jwalitptl/mediqueue/internal/model"
	tokenService "github.com/jwalitptl/mediqueue/internal/service/token"
	"github.com/jwalitptl/mediqueue/pkg/httputil"
	"github.com/jwalitptl/mediqueue/pkg/validator"
)

type Handler struct {
	service tokenService.TokenServicer
}

func NewHandler(service tokenService.TokenServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *handler.Routes) {
	r.Public.POST("/tokens", h.BookToken)
	r.Public.GET("/tokens/lookup", h.LookupTokens)
	r.Public.GET("/tokens/duplicate", h.CheckDuplicate)
	r.Public.GET("/tokens/:id/position", h.QueuePosition)
	r.Public.POST("/tokens/:id/cancel", h.CancelMyToken)

	r.Admin.GET("/tokens", h.TodayTokens)
	r.Admin.GET("/tokens/:id", h.GetToken)
	r.Admin.PATCH("/tokens/:id/status", h.UpdateTokenStatus)
}

func (h *Handler) BookToken(c *gin.Context) {
	var req model.BookTokenRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.service.BookToken(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, result)
}

func (h *Handler) LookupTokens(c *gin.Context) {
	phone, ok := queryPhone(c)
	if !ok {
		return
	}

	tokens, err := h.service.PatientTokens(c.Request.Context(), phone)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, tokens)
}

func (h *Handler) CheckDuplicate(c *gin.Context) {
	phone, ok := queryPhone(c)
	if !ok {
		return
	}
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid doctor_id")
		return
	}

	// An empty date means today.
	duplicate, err := h.service.CheckDuplicate(c.Request.Context(), phone, doctorID, c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"duplicate": duplicate})
}

func (h *Handler) QueuePosition(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	pos, err := h.service.QueuePosition(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, pos)
}

func (h *Handler) CancelMyToken(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.CancelTokenRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	token, err := h.service.CancelMyToken(c.Request.Context(), id, req.PatientPhone)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, token)
}

func (h *Handler) TodayTokens(c *gin.Context) {
	status := model.TokenStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		httputil.RespondWithBadRequest(c, "invalid status")
		return
	}

	tokens, err := h.service.TodayTokens(c.Request.Context(), status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, tokens)
}

func (h *Handler) GetToken(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	token, err := h.service.GetToken(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, token)
}

func (h *Handler) UpdateTokenStatus(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateTokenStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	token, err := h.service.UpdateTokenStatus(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, token)
}

func queryPhone(c *gin.Context) (string, bool) {
	phone := c.Query("phone")
	if !validator.IsValidPhone(phone) {
		httputil.RespondWithBadRequest(c, "a valid phone number is required")
		return "", false
	}
	return phone, true
}
