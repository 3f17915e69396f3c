package middleware

import (
	"net/http"

	"meetmydesigners/models"

	"github.com/gin-gonic/gin"
)

// RequireRole lets through only callers with one of the given roles. It must
// run after JWTAuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, role := CurrentUser(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "This action requires a " + string(roles[0]) + " account"})
	}
}
