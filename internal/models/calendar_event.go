package models

import (
	"time"

	"gorm.io/gorm"
)

type EventType string

const (
	EventMeeting         EventType = "Meeting"
	EventProjectDeadline EventType = "Project Deadline"
	EventReminder        EventType = "Reminder"
	EventOther           EventType = "Other"
	EventWork            EventType = "Work"
	EventHoliday         EventType = "Holiday"
	EventTask            EventType = "Task"
)

func (t EventType) Valid() bool {
	switch t {
	case EventMeeting, EventProjectDeadline, EventReminder, EventOther, EventWork, EventHoliday, EventTask:
		return true
	}
	return false
}

type EventStatus string

const (
	EventActive    EventStatus = "Active"
	EventNotActive EventStatus = "Not-Active"
)

// CalendarEvent is an entry on the shared calendar. RelatedID points at the
// entity the event was derived from: the project for deadline, task and meeting
// events, the holiday for holiday events. Task events also carry their TaskID.
type CalendarEvent struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	EventDate   time.Time      `gorm:"not null;index" json:"event_date"`
	EndDate     *time.Time     `json:"end_date"`
	CreatedBy   PrincipalRef   `gorm:"embedded;embeddedPrefix:created_by_" json:"created_by"`
	Status      EventStatus    `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	Location    string         `gorm:"type:varchar(255)" json:"location"`
	EventType   EventType      `gorm:"type:varchar(30);not null;index:idx_event_related" json:"event_type"`
	RelatedID   *uint64        `gorm:"index:idx_event_related" json:"related_id"`
	TaskID      *uint64        `gorm:"index" json:"task_id,omitempty"`
	IsAllDay    bool           `gorm:"not null;default:false" json:"is_all_day"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Participants []EventParticipant `gorm:"foreignKey:EventID" json:"participants"`
}

// ParticipantRefs returns the participants as principal references.
func (e CalendarEvent) ParticipantRefs() []PrincipalRef {
	refs := make([]PrincipalRef, 0, len(e.Participants))
	for _, p := range e.Participants {
		refs = append(refs, p.Ref())
	}
	return refs
}

type EventParticipant struct {
	EventID         uint64        `gorm:"primarykey" json:"-"`
	ParticipantKind PrincipalKind `gorm:"primarykey;type:varchar(20)" json:"kind"`
	ParticipantID   uint64        `gorm:"primarykey;index" json:"id"`
}

func (p EventParticipant) Ref() PrincipalRef {
	return PrincipalRef{Kind: p.ParticipantKind, ID: p.ParticipantID}
}
