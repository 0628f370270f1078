package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrMessageNotFound        = errors.New("message not found")
	ErrMessageContentRequired = errors.New("message content is required")
	ErrInvalidMessageParty    = errors.New("messages can only be exchanged between admins, managers and developers")
	ErrReceiverNotFound       = errors.New("receiver not found")
)

const messagePreviewLength = 100

// MessageService handles direct messages between admins, managers and developers.
type MessageService struct {
	repos    *repository.Repositories
	notifier *NotificationService
}

// NewMessageService creates a new MessageService
func NewMessageService(repos *repository.Repositories, notifier *NotificationService) *MessageService {
	return &MessageService{repos: repos, notifier: notifier}
}

func messageParty(kind models.PrincipalKind) bool {
	switch kind {
	case models.KindAdmin, models.KindManager, models.KindDeveloper:
		return true
	}
	return false
}

// Send stores a message, pushes it to the receiver's room and emails the receiver.
func (s *MessageService) Send(ctx context.Context, sender *models.Principal, receiver models.PrincipalRef, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrMessageContentRequired
	}
	if !messageParty(sender.Kind) || !messageParty(receiver.Kind) {
		return nil, ErrInvalidMessageParty
	}

	to, err := s.repos.Principals.FindByID(receiver.Kind, receiver.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, fmt.Errorf("failed to find receiver: %w", err)
	}

	message := &models.Message{
		Sender:   sender.Ref(),
		Receiver: to.Ref(),
		Content:  content,
	}
	if err := s.repos.Messages.Create(message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	s.notifier.Publish(to.Ref(), EventNewMessage, message)

	preview := content
	if runes := []rune(preview); len(runes) > messagePreviewLength {
		preview = string(runes[:messagePreviewLength]) + "..."
	}
	s.notifier.SendEmail(ctx, []string{to.Email}, "New Message Received",
		fmt.Sprintf("You have received a new message from %s.\n\nMessage Preview: %s", sender.Username, preview))

	return message, nil
}

// Conversation returns the messages exchanged with another principal, oldest first.
func (s *MessageService) Conversation(me *models.Principal, other models.PrincipalRef) ([]models.Message, error) {
	messages, err := s.repos.Messages.Conversation(me.Ref(), other)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	return messages, nil
}

// MarkRead marks a message read. Only its receiver may do so.
func (s *MessageService) MarkRead(me *models.Principal, id uint64) (*models.Message, error) {
	message, err := s.repos.Messages.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	if message.Receiver != me.Ref() {
		return nil, ErrMessageNotFound
	}

	if err := s.repos.Messages.MarkRead(message.ID); err != nil {
		return nil, fmt.Errorf("failed to mark message read: %w", err)
	}
	message.Read = true
	return message, nil
}

// UnreadCount counts the unread messages received by a principal.
func (s *MessageService) UnreadCount(me *models.Principal) (int64, error) {
	count, err := s.repos.Messages.CountUnread(me.Ref())
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
