package middlewares

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/presslane/newsdesk/internal/domain/user"
)

const (
	loginPath        = "/login"
	unauthorizedPath = "/unauthorized"
)

// PageGate protects the dashboard prefixes. Unlike RequireAuth it answers
// with redirects, because the caller is a browser mid-navigation:
//
//   - no session (or any session resolution error) -> login, with the
//     original path preserved as the post-login callback
//   - known principal, insufficient role -> unauthorized page
//
// The gate never mutates state; it only decides whether the request
// proceeds.
func (m *AuthMiddleware) PageGate(minRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.resolveSession(c)

		if !ok {
			target := loginPath + "?callbackUrl=" + url.QueryEscape(c.Request.URL.Path)
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}

		if !user.RoleAtLeast(claims.Role, minRole) {
			c.Redirect(http.StatusSeeOther, unauthorizedPath)
			c.Abort()
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxEmailKey, claims.Email)
		c.Set(ctxNameKey, claims.Name)
		c.Set(ctxRoleKey, claims.Role)

		c.Next()
	}
}
