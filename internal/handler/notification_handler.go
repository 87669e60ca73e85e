package handler

import (
	"io"
	"net/http"
	"recipeshare/backend/internal/database"
	"recipeshare/backend/internal/hub"
	"recipeshare/backend/internal/models"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// notificationPageSize bounds the notification list to the most recent N.
const notificationPageSize = 20

// NotificationResponse defines the structure for a single notification.
type NotificationResponse struct {
	ID              uint                    `json:"id"`
	Type            models.NotificationType `json:"type"`
	Message         string                  `json:"message"`
	IsRead          bool                    `json:"is_read"`
	RelatedRecipeID *uint                   `json:"related_recipe_id,omitempty"`
	RelatedUserID   *uint                   `json:"related_user_id,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

func newNotificationResponse(n models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:              n.ID,
		Type:            n.Type,
		Message:         n.Message,
		IsRead:          n.IsRead,
		RelatedRecipeID: n.RelatedRecipeID,
		RelatedUserID:   n.RelatedUserID,
		CreatedAt:       n.CreatedAt,
	}
}

// NotificationListResponse wraps the notification list with the derived
// unread count. The count is computed from the rows on every read rather
// than stored, so it can never drift.
type NotificationListResponse struct {
	Data        []NotificationResponse `json:"data"`
	UnreadCount int64                  `json:"unread_count"`
}

// createNotification fans a notification out to a third party as a side
// effect of a primary mutation. Callers must never notify the acting user
// about their own action; that check happens at the call site where the
// recipient is known.
func createNotification(recipientID, actorID uint, recipeID *uint, typ models.NotificationType, message string) {
	notification := models.Notification{
		UserID:          recipientID,
		Type:            typ,
		Message:         message,
		RelatedRecipeID: recipeID,
		RelatedUserID:   &actorID,
	}

	if err := database.DB.Create(&notification).Error; err != nil {
		zap.L().Warn("failed to create notification",
			zap.Uint("recipient_id", recipientID),
			zap.String("type", string(typ)),
			zap.Error(err))
		return
	}

	hub.GlobalHub.Broadcast(recipientID, hub.Event{
		Type:    "notification",
		Payload: newNotificationResponse(notification),
	})
}

// GetNotifications godoc
// @Summary      List notifications
// @Description  Returns the caller's most recent notifications, newest first, with the unread count. Anonymous callers get an empty list.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  NotificationListResponse
// @Router       /notifications [get]
func GetNotifications(c *gin.Context) {
	viewerID := viewerFrom(c)
	if viewerID == 0 {
		c.JSON(http.StatusOK, NotificationListResponse{Data: []NotificationResponse{}})
		return
	}

	var notifications []models.Notification
	if err := database.DB.
		Where("user_id = ?", viewerID).
		Order("created_at DESC, id DESC").
		Limit(notificationPageSize).
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	var unreadCount int64
	if err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", viewerID, false).
		Count(&unreadCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}

	responses := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, newNotificationResponse(n))
	}

	c.JSON(http.StatusOK, NotificationListResponse{
		Data:        responses,
		UnreadCount: unreadCount,
	})
}

// MarkNotificationRead godoc
// @Summary      Mark a notification as read
// @Description  Sets is_read on one of the caller's own notifications. Marking an already-read notification again is a no-op.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Notification ID"
// @Success      200  {object}  map[string]string "{"message": "Notification marked as read"}"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Not the recipient"
// @Failure      404  {object}  ErrorResponse "Notification not found"
// @Router       /notifications/{id}/read [post]
func MarkNotificationRead(c *gin.Context) {
	userID, _ := c.Get("userID")
	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	var notification models.Notification
	if err := database.DB.First(&notification, uint(notificationID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	if notification.UserID != userID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot mark another user's notification as read"})
		return
	}

	if !notification.IsRead {
		if err := database.DB.Model(&notification).Update("is_read", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// StreamNotifications godoc
// @Summary      Stream notifications
// @Description  Opens a server-sent-events stream delivering the caller's notifications as they are created.
// @Tags         notifications
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  ErrorResponse
// @Router       /notifications/stream [get]
func StreamNotifications(c *gin.Context) {
	userID, _ := c.Get("userID")

	client := make(hub.Client, 8)
	hub.GlobalHub.Subscribe(userID.(uint), client)
	defer hub.GlobalHub.Unsubscribe(userID.(uint), client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
