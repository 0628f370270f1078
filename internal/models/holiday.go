package models

import (
	"time"

	"gorm.io/gorm"
)

type HolidayStatus string

const (
	HolidayPending   HolidayStatus = "Pending"
	HolidayApproved  HolidayStatus = "Approved"
	HolidayDenied    HolidayStatus = "Denied"
	HolidayWithdrawn HolidayStatus = "Withdrawn"
)

type Holiday struct {
	ID            uint64         `gorm:"primarykey" json:"id"`
	DeveloperID   uint64         `gorm:"not null;index" json:"developer_id"`
	DeveloperName string         `gorm:"type:varchar(255);not null" json:"developer_name"`
	StartDate     time.Time      `gorm:"not null" json:"start_date"`
	EndDate       time.Time      `gorm:"not null" json:"end_date"`
	Reason        string         `gorm:"type:text;not null" json:"reason"`
	Status        HolidayStatus  `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	AppliedOn     time.Time      `gorm:"index" json:"applied_on"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Developer Principal `gorm:"foreignKey:DeveloperID" json:"developer,omitempty"`
}
