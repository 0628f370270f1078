package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"gorm.io/gorm"
)

const (
	deadlineTitlePrefix   = "Project Assigned: "
	taskDescriptionPrefix = "Task: "
	holidayEventTitle     = "Holiday"
	withdrawnHolidayTitle = "Withdrawn Holiday"
)

// Events derived from other entities are written only through the functions
// below, inside the transaction that changes their source.

// projectDeadlineEvent makes the project's deadline event match the project.
// A project without a deadline has no deadline event.
func projectDeadlineEvent(tx *repository.Repositories, project *models.Project, developerIDs []uint64, actor models.PrincipalRef) error {
	existing, err := tx.Events.FindByRelated(models.EventProjectDeadline, project.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to find deadline event: %w", err)
	}

	if project.Deadline == nil {
		if existing == nil {
			return nil
		}
		if err := tx.Events.Delete(existing.ID); err != nil {
			return fmt.Errorf("failed to delete deadline event: %w", err)
		}
		return nil
	}

	participants := developerRefs(developerIDs)
	if existing == nil {
		relatedID := project.ID
		event := &models.CalendarEvent{
			Title:        deadlineTitlePrefix + project.Title,
			Description:  project.Description,
			EventDate:    *project.Deadline,
			CreatedBy:    actor,
			Status:       models.EventActive,
			EventType:    models.EventProjectDeadline,
			RelatedID:    &relatedID,
			IsAllDay:     true,
			Participants: eventParticipants(participants),
		}
		if err := tx.Events.Create(event); err != nil {
			return fmt.Errorf("failed to create deadline event: %w", err)
		}
		return nil
	}

	existing.Title = deadlineTitlePrefix + project.Title
	existing.Description = project.Description
	existing.EventDate = *project.Deadline
	if err := tx.Events.Update(existing); err != nil {
		return fmt.Errorf("failed to update deadline event: %w", err)
	}
	if err := tx.Events.ReplaceParticipants(existing.ID, participants); err != nil {
		return fmt.Errorf("failed to update deadline participants: %w", err)
	}
	return nil
}

// projectTitleFromEvent strips the deadline prefix from an edited event title.
func projectTitleFromEvent(title string) string {
	return strings.TrimPrefix(title, deadlineTitlePrefix)
}

// projectTaskEvent creates or refreshes the event paired with a task. The
// event is related to the task's project.
func projectTaskEvent(tx *repository.Repositories, task *models.Task, developerIDs []uint64, actor models.PrincipalRef) (*models.CalendarEvent, error) {
	existing, err := tx.Events.FindByTask(task.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find task event: %w", err)
	}

	participants := developerRefs(developerIDs)
	endDate := task.EndDate

	if existing == nil {
		projectID, taskID := task.ProjectID, task.ID
		event := &models.CalendarEvent{
			Title:        task.TaskName,
			Description:  taskDescriptionPrefix + task.TaskName,
			EventDate:    task.StartDate,
			EndDate:      &endDate,
			CreatedBy:    actor,
			Status:       models.EventActive,
			EventType:    models.EventTask,
			RelatedID:    &projectID,
			TaskID:       &taskID,
			Participants: eventParticipants(participants),
		}
		if err := tx.Events.Create(event); err != nil {
			return nil, fmt.Errorf("failed to create task event: %w", err)
		}
		return event, nil
	}

	existing.Title = task.TaskName
	existing.Description = taskDescriptionPrefix + task.TaskName
	existing.EventDate = task.StartDate
	existing.EndDate = &endDate
	if err := tx.Events.Update(existing); err != nil {
		return nil, fmt.Errorf("failed to update task event: %w", err)
	}
	if err := tx.Events.ReplaceParticipants(existing.ID, participants); err != nil {
		return nil, fmt.Errorf("failed to update task event participants: %w", err)
	}
	return existing, nil
}

// projectHolidayEvent creates or refreshes the event paired with a holiday.
// Withdrawn holidays keep a disabled event.
func projectHolidayEvent(tx *repository.Repositories, holiday *models.Holiday) (*models.CalendarEvent, error) {
	existing, err := tx.Events.FindByRelated(models.EventHoliday, holiday.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find holiday event: %w", err)
	}

	developer := models.PrincipalRef{Kind: models.KindDeveloper, ID: holiday.DeveloperID}
	event := existing
	if event == nil {
		holidayID := holiday.ID
		event = &models.CalendarEvent{
			CreatedBy:    developer,
			EventType:    models.EventHoliday,
			RelatedID:    &holidayID,
			IsAllDay:     true,
			Participants: eventParticipants([]models.PrincipalRef{developer}),
		}
	}

	endDate := holiday.EndDate
	event.Description = holiday.Reason
	event.EventDate = holiday.StartDate
	event.EndDate = &endDate
	if holiday.Status == models.HolidayWithdrawn {
		event.Title = withdrawnHolidayTitle
		event.Status = models.EventNotActive
	} else {
		event.Title = holidayEventTitle
		event.Status = models.EventActive
	}

	if existing == nil {
		if err := tx.Events.Create(event); err != nil {
			return nil, fmt.Errorf("failed to create holiday event: %w", err)
		}
		return event, nil
	}
	if err := tx.Events.Update(event); err != nil {
		return nil, fmt.Errorf("failed to update holiday event: %w", err)
	}
	return event, nil
}

func eventParticipants(refs []models.PrincipalRef) []models.EventParticipant {
	participants := make([]models.EventParticipant, 0, len(refs))
	for _, ref := range refs {
		participants = append(participants, models.EventParticipant{
			ParticipantKind: ref.Kind,
			ParticipantID:   ref.ID,
		})
	}
	return participants
}
