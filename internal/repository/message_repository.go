package repository

import (
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
)

// GormMessageRepository is a GORM implementation of MessageRepository
type GormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *GormMessageRepository) FindByID(id uint64) (*models.Message, error) {
	var message models.Message
	if err := r.db.First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *GormMessageRepository) Conversation(a, b models.PrincipalRef) ([]models.Message, error) {
	var messages []models.Message

	const pair = "sender_kind = ? AND sender_id = ? AND receiver_kind = ? AND receiver_id = ?"
	if err := r.db.Where(pair, a.Kind, a.ID, b.Kind, b.ID).
		Or(pair, b.Kind, b.ID, a.Kind, a.ID).
		Order("created_at ASC").Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *GormMessageRepository) MarkRead(id uint64) error {
	return r.db.Model(&models.Message{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *GormMessageRepository) CountUnread(receiver models.PrincipalRef) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("receiver_kind = ? AND receiver_id = ? AND is_read = ?", receiver.Kind, receiver.ID, false).
		Count(&count).Error
	return count, err
}
