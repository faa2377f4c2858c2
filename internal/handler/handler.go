package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/mediqueue/pkg/httputil"
	"github.com/jwalitptl/mediqueue/pkg/validator"
)

// Routes carries the route groups handlers attach to. Staff and Admin are
// already behind authentication; Doctor builds the per-route check that a
// doctor may only reach their own resources.
type Routes struct {
	Public *gin.RouterGroup
	Staff  *gin.RouterGroup
	Admin  *gin.RouterGroup
	Doctor func(param string) gin.HandlerFunc
}

// Handler is implemented by every resource handler.
type Handler interface {
	RegisterRoutes(r *Routes)
}

// BindJSON decodes the body into obj and writes a 400 on failure.
func BindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	if fields, ok := validator.Fields(err); ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "validation failed",
			"errors":  fields,
		})
		return false
	}

	msg := "invalid request body"
	if errors.Is(err, io.EOF) {
		msg = "request body is required"
	}
	httputil.RespondWithBadRequest(c, msg)
	return false
}

// ParamUUID parses a path parameter and writes a 400 when it is malformed.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
