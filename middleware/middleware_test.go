package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"meetmydesigners/models"
	"meetmydesigners/services/profile"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAuth struct{}

func (stubAuth) Authenticate(ctx context.Context, token string) (*profile.Claims, error) {
	switch token {
	case "client-token":
		return &profile.Claims{UserID: "u1", Role: models.RoleClient}, nil
	case "designer-token":
		return &profile.Claims{UserID: "u2", Role: models.RoleDesigner}, nil
	}
	return nil, profile.ErrUnauthorized
}

func init() { gin.SetMode(gin.TestMode) }

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		userID, role := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user": userID, "role": role})
	})
	r.GET("/x", handlers...)
	return r
}

func do(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := newRouter(JWTAuthMiddleware(stubAuth{}))

	assert.Equal(t, http.StatusUnauthorized, do(r, "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Authorization", "Bearer stale").Code)

	w := do(r, "Authorization", "Bearer client-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u1","role":"client"}`, w.Body.String())
}

func TestQueryTokenOnlyForWebSocketUpgrades(t *testing.T) {
	r := gin.New()
	r.GET("/ws", JWTAuthMiddleware(stubAuth{}), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ws?token=client-token", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/ws?token=client-token", nil)
	req.Header.Set("Upgrade", "websocket")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := newRouter(JWTAuthMiddleware(stubAuth{}), RequireRole(models.RoleDesigner))

	assert.Equal(t, http.StatusForbidden, do(r, "Authorization", "Bearer client-token").Code)
	assert.Equal(t, http.StatusOK, do(r, "Authorization", "Bearer designer-token").Code)
}

func TestAdminAuthMiddleware(t *testing.T) {
	r := newRouter(AdminAuthMiddleware("s3cret"))
	assert.Equal(t, http.StatusUnauthorized, do(r, "Authorization", "Bearer wrong").Code)
	assert.Equal(t, http.StatusOK, do(r, "Authorization", "Bearer s3cret").Code)

	disabled := newRouter(AdminAuthMiddleware(""))
	assert.Equal(t, http.StatusUnauthorized, do(disabled, "Authorization", "Bearer ").Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimitMiddleware(2))

	assert.Equal(t, http.StatusOK, do(r, "X-Forwarded-For", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do(r, "X-Forwarded-For", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "X-Forwarded-For", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do(r, "X-Forwarded-For", "10.0.0.2").Code)
}

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		header, value, want string
	}{
		{"X-Forwarded-For", "203.0.113.7, 10.0.0.1", "203.0.113.7"},
		{"X-Forwarded-For", "garbage", "192.0.2.1"},
		{"X-Real-IP", " 198.51.100.4 ", "198.51.100.4"},
		{"CF-Connecting-IP", "2001:db8::1", "2001:db8::1"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.RemoteAddr = "192.0.2.1:4411"
		c.Request.Header.Set(tc.header, tc.value)
		assert.Equal(t, tc.want, getClientIP(c), tc.header+": "+tc.value)
	}
}
