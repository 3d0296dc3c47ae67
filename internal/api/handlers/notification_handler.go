package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pondy/classifieds/internal/services"
)

// NotificationHandler serves owner notifications.
type NotificationHandler struct {
	notificationService services.INotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService services.INotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /notifications/:phone.
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.notificationService.ListForPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

// MarkRead handles PUT /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"isRead": true})
}
