package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Task struct {
	ID               uint64                      `gorm:"primarykey" json:"id"`
	ProjectID        uint64                      `gorm:"not null;index" json:"project_id"`
	TaskName         string                      `gorm:"type:varchar(255);not null" json:"task_name"`
	Description      string                      `gorm:"type:text;not null" json:"description"`
	StartDate        time.Time                   `json:"start_date"`
	EndDate          time.Time                   `json:"end_date"`
	Status           WorkStatus                  `gorm:"type:varchar(20);not null;default:'Assigned'" json:"status"`
	CreatedBy        PrincipalRef                `gorm:"embedded;embeddedPrefix:created_by_" json:"created_by"`
	RelatedDocuments datatypes.JSONSlice[string] `json:"related_documents"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
	DeletedAt        gorm.DeletedAt              `gorm:"index" json:"-"`

	// Relations
	Project      Project           `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Participants []TaskParticipant `gorm:"foreignKey:TaskID" json:"participants,omitempty"`
	Updates      []TaskProgress    `gorm:"foreignKey:TaskID" json:"updates,omitempty"`
	FinalResult  *TaskFinalResult  `gorm:"foreignKey:TaskID" json:"final_result,omitempty"`
}

// ParticipantIDs returns the developer ids taking part in the task.
func (t Task) ParticipantIDs() []uint64 {
	ids := make([]uint64, 0, len(t.Participants))
	for _, p := range t.Participants {
		ids = append(ids, p.DeveloperID)
	}
	return ids
}

type TaskParticipant struct {
	TaskID      uint64 `gorm:"primarykey" json:"task_id"`
	DeveloperID uint64 `gorm:"primarykey;index" json:"developer_id"`

	// Relations
	Developer Principal `gorm:"foreignKey:DeveloperID" json:"developer,omitempty"`
}

// TaskProgress is one entry of a task's append-only update log.
type TaskProgress struct {
	UpdateID     string                      `gorm:"type:varchar(36);primarykey" json:"update_id"`
	TaskID       uint64                      `gorm:"not null;index" json:"task_id"`
	Content      string                      `gorm:"type:text" json:"content"`
	Author       PrincipalRef                `gorm:"embedded;embeddedPrefix:author_" json:"author"`
	AuthorName   string                      `gorm:"type:varchar(255)" json:"author_name"`
	RelatedMedia datatypes.JSONSlice[string] `json:"related_media"`
	Timestamp    time.Time                   `gorm:"not null" json:"timestamp"`
}

type TaskFinalResult struct {
	TaskID       uint64                      `gorm:"primarykey" json:"task_id"`
	Description  string                      `gorm:"type:text" json:"description"`
	ResultImages datatypes.JSONSlice[string] `json:"result_images"`
	Author       PrincipalRef                `gorm:"embedded;embeddedPrefix:author_" json:"author"`
	AuthorName   string                      `gorm:"type:varchar(255)" json:"author_name"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}
