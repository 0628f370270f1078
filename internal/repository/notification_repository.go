package repository

import (
	"github.com/yukikurage/project-hub-api/internal/database"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/utils"
	"gorm.io/gorm"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) CreateBatch(notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.Create(&notifications).Error
}

func (r *GormNotificationRepository) recipientScope(ref models.PrincipalRef) *gorm.DB {
	return r.db.Model(&models.Notification{}).
		Where("scope = ? AND recipient_kind = ? AND recipient_id = ?", models.ScopeDirect, ref.Kind, ref.ID)
}

func (r *GormNotificationRepository) ListForRecipient(ref models.PrincipalRef, params utils.PaginationParams) ([]models.Notification, int64, error) {
	return r.list(r.recipientScope(ref), params)
}

func (r *GormNotificationRepository) ListBroadcast(params utils.PaginationParams) ([]models.Notification, int64, error) {
	return r.list(r.db.Model(&models.Notification{}).Where("scope = ?", models.ScopeBroadcast), params)
}

func (r *GormNotificationRepository) list(query *gorm.DB, params utils.PaginationParams) ([]models.Notification, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	if err := query.Scopes(database.Newest(""), database.Paginate(params)).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *GormNotificationRepository) visibleTo(ref models.PrincipalRef, includeBroadcast bool) *gorm.DB {
	cond := r.db.Where("scope = ? AND recipient_kind = ? AND recipient_id = ?", models.ScopeDirect, ref.Kind, ref.ID)
	if includeBroadcast {
		cond = cond.Or("scope = ?", models.ScopeBroadcast)
	}
	return r.db.Model(&models.Notification{}).Where(cond)
}

func (r *GormNotificationRepository) MarkRead(id uint64, ref models.PrincipalRef, includeBroadcast bool) (int64, error) {
	result := r.visibleTo(ref, includeBroadcast).Where("id = ?", id).Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *GormNotificationRepository) MarkAllRead(ref models.PrincipalRef, includeBroadcast bool) error {
	return r.visibleTo(ref, includeBroadcast).Where("is_read = ?", false).Update("is_read", true).Error
}

func (r *GormNotificationRepository) CountUnread(ref models.PrincipalRef) (int64, error) {
	var count int64
	err := r.recipientScope(ref).Where("is_read = ?", false).Count(&count).Error
	return count, err
}
