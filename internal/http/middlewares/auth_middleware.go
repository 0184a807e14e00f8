package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/session"
)

// Keep this small interface so tests can fake it easily.
type TokenResolver interface {
	Resolve(token string) (int, bool)
}

type AuthMiddleware struct {
	sessions TokenResolver
}

func NewAuthMiddleware(sessions TokenResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// ExtractToken pulls the bearer credential from the request, checking the
// Authorization header, then x-access-token, then the token query parameter.
func ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")

	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	}

	if v := c.GetHeader("x-access-token"); v != "" {
		return v
	}

	if v := c.Query("token"); v != "" {
		return v
	}

	return ""
}

// RequireAuth resolves the request credential to a user id and stashes it on
// the context. It only reads the session registry; nothing is mutated.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ExtractToken(c)

		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing access token",
				},
			})
			return
		}

		if !strings.HasPrefix(raw, session.TokenPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Invalid access token",
				},
			})
			return
		}

		userID, ok := m.sessions.Resolve(raw)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Invalid or expired access token",
				},
			})
			return
		}

		c.Set(ctxUserIDKey, userID)

		c.Next()
	}
}
