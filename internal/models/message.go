package models

import "time"

type Message struct {
	ID        uint64       `gorm:"primarykey" json:"id"`
	Sender    PrincipalRef `gorm:"embedded;embeddedPrefix:sender_" json:"sender"`
	Receiver  PrincipalRef `gorm:"embedded;embeddedPrefix:receiver_" json:"receiver"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	Read      bool         `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt time.Time    `gorm:"index" json:"created_at"`
}
