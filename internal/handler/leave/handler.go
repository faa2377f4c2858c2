package leave

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/mediqueue/internal/handler"
	"github.com/jwalitptl/mediqueue/internal/model"
	leaveService "github.com/jwalitptl/mediqueue/internal/service/leave"
	"github.com/jwalitptl/mediqueue/pkg/httputil"
)

type Handler struct {
	service leaveService.LeaveServicer
}

func NewHandler(service leaveService.LeaveServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *handler.Routes) {
	r.Staff.POST("/doctors/:id/leave", r.Doctor("id"), h.SubmitLeave)
	r.Staff.GET("/doctors/:id/leave", r.Doctor("id"), h.ListDoctorLeave)

	leave := r.Admin.Group("/leave")
	{
		leave.GET("", h.ListLeave)
		leave.GET("/pending/count", h.PendingCount)
		leave.POST("/:id/approve", h.ApproveLeave)
		leave.POST("/:id/reject", h.RejectLeave)
	}
}

func (h *Handler) SubmitLeave(c *gin.Context) {
	doctorID, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.SubmitLeaveRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	leave, err := h.service.SubmitLeave(c.Request.Context(), doctorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, leave)
}

func (h *Handler) ListDoctorLeave(c *gin.Context) {
	doctorID, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	leaves, err := h.service.ListDoctorLeave(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, leaves)
}

func (h *Handler) ListLeave(c *gin.Context) {
	leaves, err := h.service.ListLeave(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, leaves)
}

func (h *Handler) PendingCount(c *gin.Context) {
	n, err := h.service.PendingCount(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"pending": n})
}

func (h *Handler) ApproveLeave(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	decision, err := h.service.ApproveLeave(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, decision)
}

func (h *Handler) RejectLeave(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	decision, err := h.service.RejectLeave(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, decision)
}
