package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventTitleRequired  = errors.New("event title is required")
	ErrEventDateRequired   = errors.New("event date is required")
	ErrInvalidEventType    = errors.New("invalid event type")
	ErrInvalidEventStatus  = errors.New("invalid event status")
	ErrInvalidParticipant  = errors.New("invalid event participant")
	ErrRelatedProjectGone  = errors.New("related project not found")
	ErrEventDateOutOfOrder = errors.New("event end date is before its start")
)

// CalendarService manages calendar events and their notifications.
type CalendarService struct {
	repos    *repository.Repositories
	notifier *NotificationService
}

// NewCalendarService creates a new CalendarService
func NewCalendarService(repos *repository.Repositories, notifier *NotificationService) *CalendarService {
	return &CalendarService{repos: repos, notifier: notifier}
}

// EventInput represents the information needed to create an event.
type EventInput struct {
	Title        string
	Description  string
	EventDate    time.Time
	EndDate      *time.Time
	Participants []models.PrincipalRef
	EventType    models.EventType
	RelatedID    *uint64
	Location     string
	IsAllDay     bool
}

// EventUpdateInput holds optional event changes.
type EventUpdateInput struct {
	Title        *string
	Description  *string
	EventDate    *time.Time
	EndDate      *time.Time
	Participants *[]models.PrincipalRef
	Status       *models.EventStatus
	Location     *string
	IsAllDay     *bool
}

// EventView is an event annotated with whether the viewer created it.
type EventView struct {
	models.CalendarEvent
	ByMe bool `json:"by_me"`
}

func validateParticipants(refs []models.PrincipalRef) error {
	for _, ref := range refs {
		if !ref.Kind.Valid() || ref.ID == 0 {
			return ErrInvalidParticipant
		}
	}
	return nil
}

// Create creates an event. Participants are notified and emailed; an event
// without participants produces a broadcast instead.
func (s *CalendarService) Create(ctx context.Context, actor *models.Principal, input EventInput) (*models.CalendarEvent, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrEventTitleRequired
	}
	if input.EventDate.IsZero() {
		return nil, ErrEventDateRequired
	}
	if input.EndDate != nil && input.EndDate.Before(input.EventDate) {
		return nil, ErrEventDateOutOfOrder
	}
	eventType := input.EventType
	if eventType == "" {
		eventType = models.EventOther
	}
	if !eventType.Valid() {
		return nil, ErrInvalidEventType
	}
	if err := validateParticipants(input.Participants); err != nil {
		return nil, err
	}

	event := &models.CalendarEvent{
		Title:        title,
		Description:  input.Description,
		EventDate:    input.EventDate,
		EndDate:      input.EndDate,
		CreatedBy:    actor.Ref(),
		Status:       models.EventActive,
		Location:     input.Location,
		EventType:    eventType,
		RelatedID:    input.RelatedID,
		IsAllDay:     input.IsAllDay,
		Participants: eventParticipants(input.Participants),
	}

	fan := &Fanout{}
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Events.Create(event); err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}

		content := fmt.Sprintf("New event created: %s", event.Title)
		participants := event.ParticipantRefs()
		if len(participants) == 0 {
			fan.Broadcast(models.NotifyEvent, event.ID, content)
			return fan.Persist(tx.Notifications)
		}

		fan.Direct(participants, models.NotifyEvent, event.ID, content)
		emails, err := emailsOf(tx.Principals, participants,
			models.KindDeveloper, models.KindManager, models.KindClient)
		if err != nil {
			return err
		}
		fan.Email(emails, fmt.Sprintf("New Event: %s", event.Title), eventInvitationBody(event))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Deliver(ctx, fan)
	return event, nil
}

// Get retrieves an event by ID.
func (s *CalendarService) Get(id uint64) (*models.CalendarEvent, error) {
	event, err := s.repos.Events.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return event, nil
}

// Update edits an event and notifies its participants. Edits to a project
// deadline event are written back to the project.
func (s *CalendarService) Update(ctx context.Context, id uint64, input EventUpdateInput) (*models.CalendarEvent, error) {
	event, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrEventTitleRequired
		}
		if event.EventType == models.EventProjectDeadline {
			title = deadlineTitlePrefix + projectTitleFromEvent(title)
		}
		event.Title = title
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.EventDate != nil {
		event.EventDate = *input.EventDate
	}
	if input.EndDate != nil {
		event.EndDate = input.EndDate
	}
	if event.EndDate != nil && event.EndDate.Before(event.EventDate) {
		return nil, ErrEventDateOutOfOrder
	}
	if input.Status != nil {
		if *input.Status != models.EventActive && *input.Status != models.EventNotActive {
			return nil, ErrInvalidEventStatus
		}
		event.Status = *input.Status
	}
	if input.Location != nil {
		event.Location = *input.Location
	}
	if input.IsAllDay != nil {
		event.IsAllDay = *input.IsAllDay
	}
	if input.Participants != nil {
		if err := validateParticipants(*input.Participants); err != nil {
			return nil, err
		}
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Events.Update(event); err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}
		if input.Participants != nil {
			if err := tx.Events.ReplaceParticipants(event.ID, *input.Participants); err != nil {
				return fmt.Errorf("failed to update participants: %w", err)
			}
		}

		if event.EventType == models.EventProjectDeadline && event.RelatedID != nil {
			if err := s.applyDeadlineEdit(tx, event, input); err != nil {
				return err
			}
		}

		stored, err := tx.Events.FindByID(event.ID)
		if err != nil {
			return fmt.Errorf("failed to reload event: %w", err)
		}
		event = stored

		participants := event.ParticipantRefs()
		if len(participants) == 0 {
			return nil
		}
		fan.Direct(participants, models.NotifyEvent, event.ID,
			fmt.Sprintf("Event \"%s\" has been updated", event.Title))
		emails, err := emailsOf(tx.Principals, participants,
			models.KindDeveloper, models.KindManager, models.KindClient)
		if err != nil {
			return err
		}
		fan.Email(emails, fmt.Sprintf("Event Update: %s", event.Title), eventUpdateBody(event))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Deliver(ctx, fan)
	return event, nil
}

// applyDeadlineEdit pushes the edited date, title and description of a
// deadline event into its project.
func (s *CalendarService) applyDeadlineEdit(tx *repository.Repositories, event *models.CalendarEvent, input EventUpdateInput) error {
	project, err := tx.Projects.FindByID(*event.RelatedID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRelatedProjectGone
		}
		return fmt.Errorf("failed to find related project: %w", err)
	}

	if input.EventDate != nil {
		deadline := event.EventDate
		project.Deadline = &deadline
	}
	if input.Title != nil {
		project.Title = projectTitleFromEvent(event.Title)
	}
	if input.Description != nil {
		project.Description = event.Description
	}

	if err := tx.Projects.Update(project); err != nil {
		return fmt.Errorf("failed to update related project: %w", err)
	}
	return nil
}

// Delete removes an event and sends cancellations to its participants.
// Deleting a project deadline event clears the project's deadline.
func (s *CalendarService) Delete(ctx context.Context, id uint64) error {
	event, err := s.Get(id)
	if err != nil {
		return err
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if event.EventType == models.EventProjectDeadline && event.RelatedID != nil {
			project, err := tx.Projects.FindByID(*event.RelatedID)
			switch {
			case err == nil:
				project.Deadline = nil
				if err := tx.Projects.Update(project); err != nil {
					return fmt.Errorf("failed to clear project deadline: %w", err)
				}
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("failed to find related project: %w", err)
			}
		}

		if err := tx.Events.Delete(event.ID); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}

		participants := event.ParticipantRefs()
		if len(participants) == 0 {
			return nil
		}
		fan.Direct(participants, models.NotifyEvent, event.ID,
			fmt.Sprintf("Event \"%s\" scheduled for %s has been cancelled.", event.Title, formatDate(event.EventDate)))
		emails, err := emailsOf(tx.Principals, participants,
			models.KindDeveloper, models.KindManager, models.KindClient)
		if err != nil {
			return err
		}
		fan.Email(emails, fmt.Sprintf("Event Cancelled: %s", event.Title),
			fmt.Sprintf("The event \"%s\" scheduled for %s has been cancelled.", event.Title, formatDate(event.EventDate)))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		return err
	}

	s.notifier.Deliver(ctx, fan)
	return nil
}

func (s *CalendarService) list(filter repository.EventFilter) ([]models.CalendarEvent, error) {
	events, err := s.repos.Events.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// ListAll returns every event.
func (s *CalendarService) ListAll() ([]models.CalendarEvent, error) {
	return s.list(repository.EventFilter{})
}

// ListCreatedBy returns the events a principal created.
func (s *CalendarService) ListCreatedBy(ref models.PrincipalRef) ([]models.CalendarEvent, error) {
	return s.list(repository.EventFilter{CreatedBy: &ref})
}

// ListInvolving returns the events a principal created or takes part in.
func (s *CalendarService) ListInvolving(ref models.PrincipalRef) ([]EventView, error) {
	events, err := s.list(repository.EventFilter{CreatedBy: &ref, Participant: &ref})
	if err != nil {
		return nil, err
	}

	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, EventView{CalendarEvent: e, ByMe: e.CreatedBy == ref})
	}
	return views, nil
}

// ListParticipating returns the events a principal takes part in.
func (s *CalendarService) ListParticipating(ref models.PrincipalRef) ([]models.CalendarEvent, error) {
	return s.list(repository.EventFilter{Participant: &ref})
}

// ActiveMeetings returns the active meetings a principal is invited to.
func (s *CalendarService) ActiveMeetings(ref models.PrincipalRef) ([]models.CalendarEvent, error) {
	eventType := models.EventMeeting
	status := models.EventActive
	return s.list(repository.EventFilter{Participant: &ref, EventType: &eventType, Status: &status})
}

func formatDate(t time.Time) string {
	return t.Format("Mon Jan 02 2006")
}

func eventInvitationBody(e *models.CalendarEvent) string {
	location := e.Location
	if location == "" {
		location = "N/A"
	}
	return fmt.Sprintf("You are invited to the event: %s\nDescription: %s\nDate: %s\nLocation: %s",
		e.Title, e.Description, e.EventDate.Format(time.RFC1123), location)
}

func eventUpdateBody(e *models.CalendarEvent) string {
	location := e.Location
	if location == "" {
		location = "N/A"
	}
	return fmt.Sprintf("The event %q has been updated.\nDate: %s\nLocation: %s\nDescription: %s",
		e.Title, e.EventDate.Format(time.RFC1123), location, e.Description)
}
