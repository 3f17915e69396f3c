package middleware

import (
	"context"
	"net/http"
	"strings"

	"meetmydesigners/models"
	"meetmydesigners/services/profile"

	"github.com/gin-gonic/gin"
)

// Authenticator resolves a bearer token to its caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*profile.Claims, error)
}

// bearerToken reads the Authorization header. WebSocket clients cannot set
// headers, so ?token= is accepted on upgrade requests.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("token")
	}
	return ""
}

// JWTAuthMiddleware accepts a token only while it is the profile's current one.
func JWTAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// CurrentUser returns the caller set by JWTAuthMiddleware.
func CurrentUser(c *gin.Context) (string, models.Role) {
	userID := c.GetString("userID")
	role, _ := c.Get("role")
	r, _ := role.(models.Role)
	return userID, r
}
