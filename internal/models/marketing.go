package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MarketingPriority string

const (
	PriorityLow    MarketingPriority = "low"
	PriorityMedium MarketingPriority = "medium"
	PriorityHigh   MarketingPriority = "high"
)

func (p MarketingPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type MarketingStatus string

const (
	MarketingPending    MarketingStatus = "pending"
	MarketingInProgress MarketingStatus = "in-progress"
	MarketingCompleted  MarketingStatus = "completed"
)

func (s MarketingStatus) Valid() bool {
	return s == MarketingPending || s == MarketingInProgress || s == MarketingCompleted
}

type MarketingTask struct {
	ID              uint64                      `gorm:"primarykey" json:"id"`
	TaskName        string                      `gorm:"type:varchar(255);not null" json:"task_name"`
	TaskDescription string                      `gorm:"type:text;not null" json:"task_description"`
	ProjectID       uint64                      `gorm:"not null;index" json:"project_id"`
	Priority        MarketingPriority           `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Status          MarketingStatus             `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	StartDate       time.Time                   `json:"start_date"`
	EndDate         time.Time                   `json:"end_date"`
	Leads           int                         `gorm:"not null;default:0" json:"leads"`
	CreatedBy       PrincipalRef                `gorm:"embedded;embeddedPrefix:created_by_" json:"created_by"`
	RelatedDocs     datatypes.JSONSlice[string] `json:"related_docs"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	DeletedAt       gorm.DeletedAt              `gorm:"index" json:"-"`

	// Relations
	Assignees []MarketingAssignee `gorm:"foreignKey:MarketingTaskID" json:"assigned_to"`
}

// AssigneeRefs returns the assignees as principal references.
func (t MarketingTask) AssigneeRefs() []PrincipalRef {
	refs := make([]PrincipalRef, 0, len(t.Assignees))
	for _, a := range t.Assignees {
		refs = append(refs, a.Ref())
	}
	return refs
}

// MarketingAssignee is either a marketing role or a content creator.
type MarketingAssignee struct {
	MarketingTaskID uint64        `gorm:"primarykey" json:"-"`
	AssigneeKind    PrincipalKind `gorm:"primarykey;type:varchar(20)" json:"kind"`
	AssigneeID      uint64        `gorm:"primarykey;index" json:"id"`
}

func (a MarketingAssignee) Ref() PrincipalRef {
	return PrincipalRef{Kind: a.AssigneeKind, ID: a.AssigneeID}
}

type LeadContact struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Contact     string `json:"contact,omitempty"`
	Email       string `json:"email,omitempty"`
}

// TaskUpdate is a period-bounded progress report on a marketing task.
type TaskUpdate struct {
	ID              uint64                           `gorm:"primarykey" json:"id"`
	MarketingTaskID uint64                           `gorm:"not null;index" json:"task_id"`
	Description     string                           `gorm:"type:text" json:"description"`
	StartDate       *time.Time                       `json:"start_date"`
	EndDate         *time.Time                       `json:"end_date"`
	Attachments     datatypes.JSONSlice[string]      `json:"attachments"`
	LeadsInfo       datatypes.JSONSlice[LeadContact] `json:"leads_info"`
	UpdatedBy       PrincipalRef                     `gorm:"embedded;embeddedPrefix:updated_by_" json:"updated_by"`
	UpdatedByName   string                           `gorm:"type:varchar(255)" json:"updated_by_name"`
	CreatedAt       time.Time                        `json:"created_at"`
	UpdatedAt       time.Time                        `json:"updated_at"`

	// Relations
	MarketingTask MarketingTask       `gorm:"foreignKey:MarketingTaskID" json:"task,omitempty"`
	Comments      []TaskUpdateComment `gorm:"foreignKey:TaskUpdateID" json:"comments"`
}

type TaskUpdateComment struct {
	ID           uint64       `gorm:"primarykey" json:"id"`
	TaskUpdateID uint64       `gorm:"not null;index" json:"task_update_id"`
	Text         string       `gorm:"type:text" json:"text"`
	Author       PrincipalRef `gorm:"embedded;embeddedPrefix:author_" json:"author"`
	AuthorName   string       `gorm:"type:varchar(255)" json:"author_name"`
	CreatedAt    time.Time    `json:"created_at"`
}
