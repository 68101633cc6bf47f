package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	jwtsvc "github.com/niranjan-aware/resonance-system/internal/pkg/jwt"
	"github.com/niranjan-aware/resonance-system/internal/pkg/response"
)

// AdminAuth guards the administrative transition endpoints (complete,
// no-show). End-user booking flows are phone-verified and carry no token.
func AdminAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or malformed Authorization header")
			c.Abort()
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			c.Abort()
			return
		}
		if claims.Role != "admin" {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Admin role required")
			c.Abort()
			return
		}

		c.Set("admin", claims.Subject)
		c.Next()
	}
}
