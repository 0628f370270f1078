package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
)

// MessageHandler serves direct messages between admins, managers and developers.
type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	sender, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type SendMessageRequest struct {
		Receiver models.PrincipalRef `json:"receiver" binding:"required"`
		Content  string              `json:"content" binding:"required"`
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), sender, req.Receiver, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// GetConversation returns the messages exchanged with /:kind/:id, oldest first.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	me, ok := currentPrincipal(c)
	if !ok {
		return
	}
	otherID, ok := parseID(c, "id")
	if !ok {
		return
	}
	kind := models.PrincipalKind(c.Param("kind"))
	if !kind.Valid() {
		apierrors.BadRequest(c, "Invalid kind")
		return
	}

	messages, err := h.messageService.Conversation(me, models.PrincipalRef{Kind: kind, ID: otherID})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// MarkAsRead marks a received message read.
func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	me, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	message, err := h.messageService.MarkRead(me, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	me, ok := currentPrincipal(c)
	if !ok {
		return
	}

	count, err := h.messageService.UnreadCount(me)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}
