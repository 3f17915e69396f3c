package handlers

import (
	"net/http"

	"meetmydesigners/middleware"
	"meetmydesigners/services/notification"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Notifications notification.NotificationService
}

func NewNotificationHandler(ns notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: ns}
}

// ListHandler handles GET /api/notifications?unread=true.
func (h *NotificationHandler) ListHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	list, err := h.Notifications.List(c.Request.Context(), userID, c.Query("unread") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	if err := h.Notifications.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllReadHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	n, err := h.Notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}
