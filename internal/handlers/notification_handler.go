package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaniyamudhan/rupeeraiser/internal/store"
)

// NotificationSource hands out queued notifications.
type NotificationSource interface {
	Drain() []store.Notification
}

// NotificationsResponse lists drained notifications, oldest first.
type NotificationsResponse struct {
	Notifications []store.Notification `json:"notifications"`
}

// NotificationHandler exposes the notification queue.
type NotificationHandler struct {
	source NotificationSource
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(source NotificationSource) *NotificationHandler {
	return &NotificationHandler{source: source}
}

// GetNotifications returns and removes every queued notification, oldest first.
// @Summary     Drain notifications
// @Tags        notifications
// @Produce     json
// @Success     200 {object} NotificationsResponse
// @Router      /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, NotificationsResponse{Notifications: h.source.Drain()})
}
