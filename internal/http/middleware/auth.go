// README: Session auth middleware; resolves the bearer token to a caller.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wireconnect/internal/session"
	"wireconnect/internal/types"
)

const (
	ctxCallerID   = "caller_id"
	ctxCallerRole = "caller_role"
)

func Auth(verifier session.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		sess, err := verifier.Verify(c.Request.Context(), strings.TrimPrefix(header, prefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		c.Set(ctxCallerID, string(sess.UserID))
		c.Set(ctxCallerRole, sess.Role)
		c.Next()
	}
}

// RequireRole guards a route group; it runs after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func CallerID(c *gin.Context) types.ID {
	return types.ID(c.GetString(ctxCallerID))
}

func CallerRole(c *gin.Context) string {
	return c.GetString(ctxCallerRole)
}
