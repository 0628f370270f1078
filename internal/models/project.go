package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WorkStatus is shared by projects and tasks. Transitions are not ordered.
type WorkStatus string

const (
	StatusAssigned   WorkStatus = "Assigned"
	StatusStarted    WorkStatus = "Started"
	StatusInProgress WorkStatus = "In-Progress"
	StatusTesting    WorkStatus = "Testing"
	StatusCompleted  WorkStatus = "Completed"
)

func (s WorkStatus) Valid() bool {
	switch s {
	case StatusAssigned, StatusStarted, StatusInProgress, StatusTesting, StatusCompleted:
		return true
	}
	return false
}

type Project struct {
	ID            uint64                      `gorm:"primarykey" json:"id"`
	Title         string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description   string                      `gorm:"type:text;not null" json:"description"`
	Deadline      *time.Time                  `json:"deadline"`
	Status        WorkStatus                  `gorm:"type:varchar(20);not null;default:'Assigned';index" json:"status"`
	RelatedDocs   datatypes.JSONSlice[string] `json:"related_docs"`
	CreatedBy     PrincipalRef                `gorm:"embedded;embeddedPrefix:created_by_" json:"created_by"`
	LastUpdatedBy PrincipalRef                `gorm:"embedded;embeddedPrefix:last_updated_by_" json:"last_updated_by"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	DeletedAt     gorm.DeletedAt              `gorm:"index" json:"-"`

	// Relations
	Assignments []ProjectAssignment `gorm:"foreignKey:ProjectID" json:"assignments,omitempty"`
}

// DeveloperIDs returns the ids of the assigned developers.
func (p Project) DeveloperIDs() []uint64 {
	ids := make([]uint64, 0, len(p.Assignments))
	for _, a := range p.Assignments {
		ids = append(ids, a.DeveloperID)
	}
	return ids
}

type ProjectAssignment struct {
	ProjectID   uint64    `gorm:"primarykey" json:"project_id"`
	DeveloperID uint64    `gorm:"primarykey;index" json:"developer_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Developer Principal `gorm:"foreignKey:DeveloperID" json:"developer,omitempty"`
}

// ClientProject links a client to a project it commissioned.
type ClientProject struct {
	ClientID  uint64 `gorm:"primarykey" json:"client_id"`
	ProjectID uint64 `gorm:"primarykey;index" json:"project_id"`
}
