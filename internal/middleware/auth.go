package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/jwt"

	"github.com/tracnorth/site/internal/domain"
)

const userIDContextKey = "user_id"

// Auth returns a gin middleware that requires a valid Bearer token issued by
// the given JWT service. The authenticated user id is stored in the context
// under "user_id".
func Auth(jwtSvc jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		parsed, err := jwtSvc.ValidateAndParse(token)
		if err != nil || parsed == nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(userIDContextKey, parsed.UserID)
		c.Next()
	}
}

// RequirePermission returns a gin middleware that checks the authenticated
// user's permission on a resource. The action is derived from the HTTP
// method: GET/HEAD → read, DELETE → delete, everything else → write.
// A nil PermissionService disables gating entirely.
func RequirePermission(perms domain.PermissionService, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if perms == nil {
			c.Next()
			return
		}

		userID := GetUserID(c)
		if userID == "" {
			abortUnauthorized(c, "unauthorized")
			return
		}

		if !perms.Allows(userID, resource, actionForMethod(c.Request.Method)) {
			c.Abort()
			c.JSON(http.StatusForbidden, gin.H{
				"code":    http.StatusForbidden,
				"message": "forbidden",
				"data":    nil,
			})
			return
		}

		c.Next()
	}
}

// GetUserID extracts the authenticated user id from the gin.Context.
// Returns an empty string when the request is unauthenticated.
func GetUserID(c *gin.Context) string {
	if v, exists := c.Get(userIDContextKey); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func actionForMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodDelete:
		return "delete"
	default:
		return "write"
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Abort()
	c.JSON(http.StatusUnauthorized, gin.H{
		"code":    http.StatusUnauthorized,
		"message": msg,
		"data":    nil,
	})
}
