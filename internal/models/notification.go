package models

import "time"

// NotificationScope says whether a notification is addressed to a single
// principal or to everyone with admin visibility.
type NotificationScope string

const (
	ScopeBroadcast NotificationScope = "broadcast"
	ScopeDirect    NotificationScope = "direct"
)

type Notification struct {
	ID        uint64            `gorm:"primarykey" json:"id"`
	Scope     NotificationScope `gorm:"type:varchar(20);not null;index:idx_notification_recipient" json:"scope"`
	Recipient PrincipalRef      `gorm:"embedded;embeddedPrefix:recipient_" json:"recipient"`
	Content   string            `gorm:"type:text;not null" json:"content"`
	Type      string            `gorm:"type:varchar(50);not null" json:"type"`
	RelatedID *uint64           `json:"related_id"`
	Read      bool              `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}

// Notification type tags.
const (
	NotifyProject           = "Project"
	NotifyTask              = "Task"
	NotifyEvent             = "Event"
	NotifyHoliday           = "Holiday"
	NotifyMarketingTask     = "MarketingTask"
	NotifyTaskUpdate        = "task-update"
	NotifyTaskUpdateDeleted = "task-update-deleted"
	NotifyComment           = "task-comment"
	NotifyCommentDeleted    = "comment-deleted"
	NotifyRevenue           = "revenue"
)
