package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/presslane/newsdesk/internal/auth"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifySessionToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt        TokenVerifier
	cookieName string
}

func NewAuthMiddleware(jwt TokenVerifier, cookieName string) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "session_token"
	}

	return &AuthMiddleware{jwt: jwt, cookieName: cookieName}
}

// resolveSession pulls the raw credential off the request: Bearer header
// first, session cookie second. Any resolution error means no session.
func (m *AuthMiddleware) resolveSession(c *gin.Context) (*auth.Claims, bool) {
	raw := ""

	authHeader := c.GetHeader("Authorization")

	if strings.HasPrefix(authHeader, "Bearer ") {
		raw = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	}

	if raw == "" {
		if cookie, err := c.Cookie(m.cookieName); err == nil {
			raw = cookie
		}
	}

	if raw == "" {
		return nil, false
	}

	claims, err := m.jwt.VerifySessionToken(raw)

	if err != nil {
		// fail closed: a broken token is the same as no token
		return nil, false
	}

	return claims, true
}

// RequireAuth guards API routes; failures answer with JSON, not redirects.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.resolveSession(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid session",
				},
			})
			return
		}

		// Stash useful bits of identity on the context
		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxEmailKey, claims.Email)
		c.Set(ctxNameKey, claims.Name)
		c.Set(ctxRoleKey, claims.Role)

		c.Next()
	}
}

// Optional helpers so handlers don’t need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func EmailFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxEmailKey)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

func NameFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxNameKey)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
