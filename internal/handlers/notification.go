package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/dto"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/realtime"
	"github.com/yukikurage/project-hub-api/internal/services"
	"github.com/yukikurage/project-hub-api/internal/utils"
)

// NotificationHandler serves notification inboxes and the live event stream.
type NotificationHandler struct {
	notificationService *services.NotificationService
	hub                 *realtime.Hub
}

func NewNotificationHandler(notificationService *services.NotificationService, hub *realtime.Hub) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		hub:                 hub,
	}
}

// ListNotifications returns the authenticated principal's notifications,
// newest first. Admins see broadcasts.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	notifications, total, err := h.notificationService.List(principal, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	unread, err := h.notificationService.UnreadCount(principal)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NotificationListResponse{
		Notifications: notifications,
		Unread:        unread,
		Pagination:    utils.NewPaginationResponse(params, total),
	})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(principal, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(principal); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// Stream pushes live events to the authenticated principal as server-sent
// events. The subscriber joins its own room; admins also join the broadcast room.
func (h *NotificationHandler) Stream(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	rooms := []string{principal.Ref().Room()}
	if principal.Kind == models.KindAdmin {
		rooms = append(rooms, constants.BroadcastRoom)
	}
	sub := h.hub.Subscribe(rooms...)
	defer h.hub.Unsubscribe(sub)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("ready", gin.H{"rooms": rooms})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case event, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent(event.Name, event)
			return true
		}
	})
}
