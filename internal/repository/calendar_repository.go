package repository

import (
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCalendarEventRepository is a GORM implementation of CalendarEventRepository
type GormCalendarEventRepository struct {
	db *gorm.DB
}

// NewCalendarEventRepository creates a new CalendarEventRepository
func NewCalendarEventRepository(db *gorm.DB) CalendarEventRepository {
	return &GormCalendarEventRepository{db: db}
}

// Create creates an event and its participants
func (r *GormCalendarEventRepository) Create(event *models.CalendarEvent) error {
	refs := event.ParticipantRefs()
	if err := r.db.Omit(clause.Associations).Create(event).Error; err != nil {
		return err
	}
	if err := r.ReplaceParticipants(event.ID, refs); err != nil {
		return err
	}
	return r.db.Where("event_id = ?", event.ID).Find(&event.Participants).Error
}

func (r *GormCalendarEventRepository) FindByID(id uint64) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := r.db.Preload("Participants").First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *GormCalendarEventRepository) FindByRelated(eventType models.EventType, relatedID uint64) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := r.db.Preload("Participants").
		Where("event_type = ? AND related_id = ?", eventType, relatedID).
		First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *GormCalendarEventRepository) FindByTask(taskID uint64) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := r.db.Preload("Participants").
		Where("event_type = ? AND task_id = ?", models.EventTask, taskID).
		First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *GormCalendarEventRepository) List(filter EventFilter) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent

	query := r.db.Model(&models.CalendarEvent{}).Preload("Participants")

	participantSubQuery := func(ref models.PrincipalRef) *gorm.DB {
		return r.db.Model(&models.EventParticipant{}).
			Select("1").
			Where("event_participants.event_id = calendar_events.id").
			Where("event_participants.participant_kind = ? AND event_participants.participant_id = ?", ref.Kind, ref.ID)
	}

	switch {
	case filter.CreatedBy != nil && filter.Participant != nil:
		query = query.Where(
			r.db.Where("calendar_events.created_by_kind = ? AND calendar_events.created_by_id = ?",
				filter.CreatedBy.Kind, filter.CreatedBy.ID).
				Or("EXISTS (?)", participantSubQuery(*filter.Participant)),
		)
	case filter.CreatedBy != nil:
		query = query.Where("calendar_events.created_by_kind = ? AND calendar_events.created_by_id = ?",
			filter.CreatedBy.Kind, filter.CreatedBy.ID)
	case filter.Participant != nil:
		query = query.Where("EXISTS (?)", participantSubQuery(*filter.Participant))
	}

	if filter.EventType != nil {
		query = query.Where("calendar_events.event_type = ?", *filter.EventType)
	}
	if filter.Status != nil {
		query = query.Where("calendar_events.status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("calendar_events.event_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("calendar_events.event_date < ?", *filter.To)
	}

	if err := query.Order("calendar_events.event_date ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *GormCalendarEventRepository) Update(event *models.CalendarEvent) error {
	return r.db.Omit(clause.Associations).Save(event).Error
}

func (r *GormCalendarEventRepository) ReplaceParticipants(eventID uint64, refs []models.PrincipalRef) error {
	if err := r.db.Where("event_id = ?", eventID).Delete(&models.EventParticipant{}).Error; err != nil {
		return err
	}

	seen := make(map[models.PrincipalRef]struct{}, len(refs))
	rows := make([]models.EventParticipant, 0, len(refs))
	for _, ref := range refs {
		if ref.IsSystem() {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		rows = append(rows, models.EventParticipant{
			EventID:         eventID,
			ParticipantKind: ref.Kind,
			ParticipantID:   ref.ID,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.Create(&rows).Error
}

func (r *GormCalendarEventRepository) Delete(id uint64) error {
	if err := r.db.Where("event_id = ?", id).Delete(&models.EventParticipant{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.CalendarEvent{}, id).Error
}

func (r *GormCalendarEventRepository) DeleteByRelated(types []models.EventType, relatedID uint64) error {
	return r.deleteWhere(r.db.Where("event_type IN ? AND related_id = ?", types, relatedID))
}

func (r *GormCalendarEventRepository) DeleteByTask(taskID uint64) error {
	return r.deleteWhere(r.db.Where("event_type = ? AND task_id = ?", models.EventTask, taskID))
}

func (r *GormCalendarEventRepository) deleteWhere(cond *gorm.DB) error {
	var ids []uint64
	if err := r.db.Model(&models.CalendarEvent{}).
		Where(cond).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if err := r.db.Where("event_id IN ?", ids).Delete(&models.EventParticipant{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.CalendarEvent{}, ids).Error
}
