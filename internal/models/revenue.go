package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Revenue struct {
	ID            uint64                      `gorm:"primarykey" json:"id"`
	ProjectID     *uint64                     `gorm:"index" json:"project_id"`
	Amount        float64                     `json:"revenue_generated"`
	Date          time.Time                   `json:"date"`
	Description   string                      `gorm:"type:text" json:"description"`
	Attachments   datatypes.JSONSlice[string] `json:"attachments"`
	CreatedBy     PrincipalRef                `gorm:"embedded;embeddedPrefix:created_by_" json:"created_by"`
	CreatedByName string                      `gorm:"type:varchar(255)" json:"created_by_name"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	DeletedAt     gorm.DeletedAt              `gorm:"index" json:"-"`

	// Relations
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
