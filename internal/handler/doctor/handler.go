package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/mediqueue/internal/handler"
	"github.com/jwalitptl/mediqueue/internal/model"
	doctorService "github.com/jwalitptl/mediqueue/internal/service/doctor"
	"github.com/jwalitptl/mediqueue/pkg/httputil"
)

type Handler struct {
	service doctorService.DoctorServicer
}

func NewHandler(service doctorService.DoctorServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *handler.Routes) {
	r.Public.GET("/doctors", h.ListDoctors)
	r.Public.GET("/doctors/:id", h.GetDoctor)
	r.Public.GET("/departments/:department/doctors", h.DoctorsByDepartment)

	r.Admin.POST("/doctors", h.AddDoctor)
	r.Admin.PUT("/doctors/:id", h.UpdateDoctor)
	r.Admin.DELETE("/doctors/:id", h.DeleteDoctor)
}

func (h *Handler) AddDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.AddDoctor(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, doctor)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.UpdateDoctor(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteDoctor(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	doctor, err := h.service.GetDoctor(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.ListDoctors(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) DoctorsByDepartment(c *gin.Context) {
	doctors, err := h.service.DoctorsByDepartment(c.Request.Context(), c.Param("department"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctors)
}
