package middleware

import (
	"github.com/gin-gonic/gin"

	"bookreview-backend/internal/shared/response"
)

// RequireAdmin must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			response.Unauthorized(c, "Authentication required")
			return
		}
		if !principal.IsAdmin() {
			response.Forbidden(c, "Access denied: admin role required")
			return
		}

		c.Next()
	}
}
