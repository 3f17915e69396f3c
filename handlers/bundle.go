package handlers

import (
	"net/http"

	"meetmydesigners/middleware"
	"meetmydesigners/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Auth resolves bearer tokens for the protected groups.
	Auth middleware.Authenticator

	Profile      *AuthHandler
	Designer     *DesignerHandler
	Booking      *BookingHandler
	Session      *SessionHandler
	Wallet       *WalletHandler
	Bank         *BankHandler
	Complaint    *ComplaintHandler
	Notification *NotificationHandler
	Webhook      *WebhookHandler
	Realtime     *RealtimeHandler
	Admin        *AdminHandler
}

// HealthHandler reports the last dependency health snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.CheckedAt.IsZero() || status.Mongo
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": map[bool]string{true: "ok", false: "degraded"}[healthy], "dependencies": status})
}
