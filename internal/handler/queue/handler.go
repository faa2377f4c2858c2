package queue

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/mediqueue/internal/handler"
	queueService "github.com/jwalitptl/mediqueue/internal/service/queue"
	tokenService "github.com/jwalitptl/mediqueue/internal/service/token"
	"github.com/jwalitptl/mediqueue/pkg/httputil"
)

type Handler struct {
	queue  queueService.QueueServicer
	tokens tokenService.TokenServicer
}

func NewHandler(queue queueService.QueueServicer, tokens tokenService.TokenServicer) *Handler {
	return &Handler{queue: queue, tokens: tokens}
}

func (h *Handler) RegisterRoutes(r *handler.Routes) {
	q := r.Staff.Group("/queue/:doctor_id", r.Doctor("doctor_id"))
	{
		q.GET("", h.Snapshot)
		q.GET("/tokens", h.DoctorTokens)
		q.POST("/next", h.CallNext)
		q.POST("/complete", h.CompleteCurrent)
		q.POST("/skip/:token_id", h.Skip)
	}
}

func (h *Handler) Snapshot(c *gin.Context) {
	doctorID, ok := handler.ParamUUID(c, "doctor_id")
	if !ok {
		return
	}

	snapshot, err := h.queue.Snapshot(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, snapshot)
}

func (h *Handler) DoctorTokens(c *gin.Context) {
	doctorID, ok := handler.ParamUUID(c, "doctor_id")
	if !ok {
		return
	}

	tokens, err := h.tokens.DoctorTokens(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, tokens)
}

func (h *Handler) CallNext(c *gin.Context) {
	doctorID, ok := handler.ParamUUID(c, "doctor_id")
	if !ok {
		return
	}

	token, err := h.queue.CallNext(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, token)
}

func (h *Handler) CompleteCurrent(c *gin.Context) {
	doctorID, ok := handler.ParamUUID(c, "doctor_id")
	if !ok {
		return
	}

	token, err := h.queue.CompleteCurrent(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, token)
}

func (h *Handler) Skip(c *gin.Context) {
	doctorID, ok := handler.ParamUUID(c, "doctor_id")
	if !ok {
		return
	}
	tokenID, ok := handler.ParamUUID(c, "token_id")
	if !ok {
		return
	}

	token, err := h.queue.Skip(c.Request.Context(), doctorID, tokenID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, token)
}
