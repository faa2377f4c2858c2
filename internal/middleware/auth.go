package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/pkg/auth"
	"github.com/jwalitptl/mediqueue/pkg/httputil"
)

const ContextClaims = "claims"

type AuthMiddleware struct {
	jwtSvc auth.JWTService
}

func NewAuthMiddleware(jwtSvc auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtSvc: jwtSvc}
}

// Authenticate verifies the bearer token and stores its claims in the context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse("missing authorization header"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse("invalid authorization format"))
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse("invalid token"))
			return
		}

		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireAdmin allows only admin tokens through
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil || claims.Role != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, httputil.NewErrorResponse("permission denied"))
			return
		}
		c.Next()
	}
}

// RequireDoctor allows admins, and doctors whose doctor_id matches the path
// parameter named param.
func (m *AuthMiddleware) RequireDoctor(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		switch {
		case claims == nil:
		case claims.Role == model.RoleAdmin:
			c.Next()
			return
		case claims.Role == model.RoleDoctor && claims.DoctorID != "" && claims.DoctorID == c.Param(param):
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, httputil.NewErrorResponse("permission denied"))
	}
}

// Claims returns the authenticated caller, or nil on public routes.
func Claims(c *gin.Context) *model.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*model.Claims)
	return claims
}
