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
	ErrHolidayNotFound        = errors.New("holiday request not found")
	ErrHolidayReasonRequired  = errors.New("holiday reason is required")
	ErrHolidayDatesOutOfOrder = errors.New("holiday end date is before its start date")
	ErrHolidayApproved        = errors.New("holiday request is already approved")
	ErrHolidayClosed          = errors.New("holiday request can no longer be decided")
	ErrInvalidHolidayDecision = errors.New(`invalid status, only "Approved" or "Denied" are valid statuses`)
)

// HolidayService manages developer holiday requests and their calendar events.
type HolidayService struct {
	repos    *repository.Repositories
	notifier *NotificationService
	now      func() time.Time
}

// NewHolidayService creates a new HolidayService
func NewHolidayService(repos *repository.Repositories, notifier *NotificationService) *HolidayService {
	return &HolidayService{repos: repos, notifier: notifier, now: time.Now}
}

// HolidayInput represents a holiday request.
type HolidayInput struct {
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// HolidayUpdateInput holds optional holiday changes.
type HolidayUpdateInput struct {
	StartDate *time.Time
	EndDate   *time.Time
	Reason    *string
}

// Apply files a holiday request for a developer. Admins get a broadcast and
// each manager of the developer a direct notification.
func (s *HolidayService) Apply(ctx context.Context, developer *models.Principal, input HolidayInput) (*models.Holiday, *models.CalendarEvent, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, nil, ErrHolidayReasonRequired
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, nil, ErrHolidayDatesOutOfOrder
	}

	holiday := &models.Holiday{
		DeveloperID:   developer.ID,
		DeveloperName: developer.Username,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		Reason:        reason,
		Status:        models.HolidayPending,
		AppliedOn:     s.now(),
	}

	var event *models.CalendarEvent
	fan := &Fanout{}
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Holidays.Create(holiday); err != nil {
			return fmt.Errorf("failed to create holiday: %w", err)
		}

		var err error
		event, err = projectHolidayEvent(tx, holiday)
		if err != nil {
			return err
		}

		managers, err := tx.Principals.ManagersOf(models.KindDeveloper, []uint64{developer.ID})
		if err != nil {
			return fmt.Errorf("failed to resolve managers: %w", err)
		}
		content := fmt.Sprintf("Holiday request from %s", developer.Username)
		fan.Broadcast(models.NotifyHoliday, holiday.ID, content)
		for _, m := range managers {
			fan.Direct([]models.PrincipalRef{m.Ref()}, models.NotifyHoliday, holiday.ID, content)
		}
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.Deliver(ctx, fan)
	return holiday, event, nil
}

// Get retrieves a holiday by ID.
func (s *HolidayService) Get(id uint64) (*models.Holiday, error) {
	holiday, err := s.repos.Holidays.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHolidayNotFound
		}
		return nil, fmt.Errorf("failed to find holiday: %w", err)
	}
	return holiday, nil
}

// List returns every holiday, most recent application first.
func (s *HolidayService) List() ([]models.Holiday, error) {
	return s.list(repository.HolidayFilter{})
}

// ListByDeveloper returns a developer's holidays, most recent application first.
func (s *HolidayService) ListByDeveloper(developerID uint64) ([]models.Holiday, error) {
	if _, err := s.repos.Principals.FindByID(models.KindDeveloper, developerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to find developer: %w", err)
	}
	return s.list(repository.HolidayFilter{DeveloperID: &developerID})
}

func (s *HolidayService) list(filter repository.HolidayFilter) ([]models.Holiday, error) {
	holidays, err := s.repos.Holidays.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return holidays, nil
}

// Withdraw withdraws a developer's own holiday request and disables its
// event. Approved requests cannot be withdrawn.
func (s *HolidayService) Withdraw(developer *models.Principal, id uint64) (*models.Holiday, *models.CalendarEvent, error) {
	holiday, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}
	if holiday.DeveloperID != developer.ID {
		return nil, nil, ErrHolidayNotFound
	}
	if holiday.Status == models.HolidayApproved {
		return nil, nil, ErrHolidayApproved
	}

	var event *models.CalendarEvent
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		err := transitionHoliday(tx, holiday, models.HolidayWithdrawn,
			[]models.HolidayStatus{models.HolidayApproved}, ErrHolidayApproved)
		if err != nil {
			return err
		}
		event, err = projectHolidayEvent(tx, holiday)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return holiday, event, nil
}

// Decide approves or denies a holiday request and notifies the developer.
// Approved and withdrawn requests are final.
func (s *HolidayService) Decide(ctx context.Context, id uint64, status models.HolidayStatus) (*models.Holiday, error) {
	if status != models.HolidayApproved && status != models.HolidayDenied {
		return nil, ErrInvalidHolidayDecision
	}

	holiday, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if holiday.Status == models.HolidayApproved || holiday.Status == models.HolidayWithdrawn {
		return nil, ErrHolidayClosed
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		err := transitionHoliday(tx, holiday, status,
			[]models.HolidayStatus{models.HolidayApproved, models.HolidayWithdrawn}, ErrHolidayClosed)
		if err != nil {
			return err
		}
		developer := models.PrincipalRef{Kind: models.KindDeveloper, ID: holiday.DeveloperID}
		fan.Direct([]models.PrincipalRef{developer}, models.NotifyHoliday, holiday.ID,
			fmt.Sprintf("Your holiday request has been %s", strings.ToLower(string(status))))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Deliver(ctx, fan)
	return holiday, nil
}

// transitionHoliday moves holiday to status unless the stored status is in
// closed. A row that is closed by the time of the write yields closedErr.
func transitionHoliday(tx *repository.Repositories, holiday *models.Holiday, status models.HolidayStatus, closed []models.HolidayStatus, closedErr error) error {
	changed, err := tx.Holidays.UpdateStatus(holiday.ID, status, closed)
	if err != nil {
		return fmt.Errorf("failed to update holiday status: %w", err)
	}
	if changed == 0 {
		if _, err := tx.Holidays.FindByID(holiday.ID); errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHolidayNotFound
		}
		return closedErr
	}
	holiday.Status = status
	return nil
}

// Update edits the dates or reason of a holiday and its event.
func (s *HolidayService) Update(id uint64, input HolidayUpdateInput) (*models.Holiday, error) {
	holiday, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.StartDate != nil {
		holiday.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		holiday.EndDate = *input.EndDate
	}
	if holiday.EndDate.Before(holiday.StartDate) {
		return nil, ErrHolidayDatesOutOfOrder
	}
	if input.Reason != nil {
		reason := strings.TrimSpace(*input.Reason)
		if reason == "" {
			return nil, ErrHolidayReasonRequired
		}
		holiday.Reason = reason
	}

	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Holidays.UpdateDetails(holiday); err != nil {
			return fmt.Errorf("failed to update holiday: %w", err)
		}
		stored, err := tx.Holidays.FindByID(id)
		if err != nil {
			return fmt.Errorf("failed to reload holiday: %w", err)
		}
		holiday = stored
		_, err = projectHolidayEvent(tx, holiday)
		return err
	})
	if err != nil {
		return nil, err
	}
	return holiday, nil
}

// Delete removes a holiday and its event.
func (s *HolidayService) Delete(id uint64) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	return s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Events.DeleteByRelated([]models.EventType{models.EventHoliday}, id); err != nil {
			return fmt.Errorf("failed to delete holiday event: %w", err)
		}
		if err := tx.Holidays.Delete(id); err != nil {
			return fmt.Errorf("failed to delete holiday: %w", err)
		}
		return nil
	})
}
