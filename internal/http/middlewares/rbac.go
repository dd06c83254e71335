package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/presslane/newsdesk/internal/domain/user"
)

// RequireMinRole enforces the role hierarchy on API routes: superadmin
// covers admin routes, admin covers user routes. Runs after RequireAuth.
func (m *AuthMiddleware) RequireMinRole(minRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}
		if !user.RoleAtLeast(role, minRole) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Insufficient role",
				},
			})
			return
		}
		c.Next()
	}
}
