package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrRevenueNotFound = errors.New("revenue entry not found")
	ErrInvalidAmount   = errors.New("revenue amount must not be negative")
)

// RevenueService records revenue entries.
type RevenueService struct {
	repos    *repository.Repositories
	files    attachments
	notifier *NotificationService
	now      func() time.Time
}

// NewRevenueService creates a new RevenueService
func NewRevenueService(repos *repository.Repositories, store storage.ObjectStore, notifier *NotificationService) *RevenueService {
	return &RevenueService{
		repos:    repos,
		files:    attachments{store: store},
		notifier: notifier,
		now:      time.Now,
	}
}

// RevenueInput represents a new revenue entry
type RevenueInput struct {
	ProjectID   *uint64
	Amount      float64
	Date        *time.Time
	Description string
	Attachments []Upload
}

// RevenueUpdateInput holds optional revenue changes. Attachments are appended.
type RevenueUpdateInput struct {
	ProjectID   *uint64
	Amount      *float64
	Date        *time.Time
	Description *string
	Attachments []Upload
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func (s *RevenueService) findProject(tx *repository.Repositories, id *uint64) (*models.Project, error) {
	if id == nil {
		return nil, nil
	}
	project, err := tx.Projects.FindByID(*id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// Create records a revenue entry and emails every admin and manager.
func (s *RevenueService) Create(ctx context.Context, actor *models.Principal, input RevenueInput) (*models.Revenue, error) {
	if input.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	project, err := s.findProject(s.repos, input.ProjectID)
	if err != nil {
		return nil, err
	}

	urls, err := s.files.upload(ctx, constants.FolderRevenue, input.Attachments)
	if err != nil {
		return nil, err
	}

	date := s.now()
	if input.Date != nil {
		date = *input.Date
	}
	revenue := &models.Revenue{
		ProjectID:     input.ProjectID,
		Amount:        input.Amount,
		Date:          date,
		Description:   input.Description,
		Attachments:   datatypes.JSONSlice[string](urls),
		CreatedBy:     actor.Ref(),
		CreatedByName: actor.Username,
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Revenues.Create(revenue); err != nil {
			return fmt.Errorf("failed to create revenue entry: %w", err)
		}

		content := fmt.Sprintf("New revenue of %s added", formatAmount(revenue.Amount))
		subject := "New Revenue Entry"
		if project != nil {
			content += fmt.Sprintf(" for project %s", project.Title)
			subject += fmt.Sprintf(" for %s", project.Title)
		}
		notifyAssignees(fan, actor.Ref(), nil, models.NotifyRevenue, revenue.ID, content)

		var emails []string
		for _, kind := range []models.PrincipalKind{models.KindAdmin, models.KindManager} {
			principals, err := tx.Principals.List(kind)
			if err != nil {
				return fmt.Errorf("failed to list recipients: %w", err)
			}
			for _, p := range principals {
				emails = append(emails, p.Email)
			}
		}
		fan.Email(emails, subject, revenueBody(revenue))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		s.files.discard(ctx, urls)
		return nil, err
	}

	revenue.Project = project
	s.notifier.Deliver(ctx, fan)
	return revenue, nil
}

// Get retrieves a revenue entry by ID.
func (s *RevenueService) Get(id uint64) (*models.Revenue, error) {
	revenue, err := s.repos.Revenues.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRevenueNotFound
		}
		return nil, fmt.Errorf("failed to find revenue entry: %w", err)
	}
	return revenue, nil
}

// List returns every revenue entry, newest first.
func (s *RevenueService) List() ([]models.Revenue, error) {
	return s.list(nil)
}

// ListByProject returns the revenue entries of a project, newest first.
func (s *RevenueService) ListByProject(projectID uint64) ([]models.Revenue, error) {
	return s.list(&projectID)
}

func (s *RevenueService) list(projectID *uint64) ([]models.Revenue, error) {
	revenues, err := s.repos.Revenues.List(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list revenue entries: %w", err)
	}
	return revenues, nil
}

// Update edits a revenue entry.
func (s *RevenueService) Update(ctx context.Context, actor *models.Principal, id uint64, input RevenueUpdateInput) (*models.Revenue, error) {
	revenue, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.ProjectID != nil {
		if _, err := s.findProject(s.repos, input.ProjectID); err != nil {
			return nil, err
		}
		revenue.ProjectID = input.ProjectID
		revenue.Project = nil
	}
	if input.Amount != nil {
		if *input.Amount < 0 {
			return nil, ErrInvalidAmount
		}
		revenue.Amount = *input.Amount
	}
	if input.Date != nil {
		revenue.Date = *input.Date
	}
	if input.Description != nil {
		revenue.Description = *input.Description
	}

	added, err := s.files.upload(ctx, constants.FolderRevenue, input.Attachments)
	if err != nil {
		return nil, err
	}
	revenue.Attachments = append(revenue.Attachments, added...)

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Revenues.Update(revenue); err != nil {
			return fmt.Errorf("failed to update revenue entry: %w", err)
		}
		notifyAssignees(fan, actor.Ref(), nil, models.NotifyRevenue, revenue.ID,
			fmt.Sprintf("Revenue entry updated: %s", formatAmount(revenue.Amount)))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		s.files.discard(ctx, added)
		return nil, err
	}

	s.notifier.Deliver(ctx, fan)
	return revenue, nil
}

// Delete removes a revenue entry and its attachments.
func (s *RevenueService) Delete(ctx context.Context, id uint64) error {
	revenue, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.repos.Revenues.Delete(revenue.ID); err != nil {
		return fmt.Errorf("failed to delete revenue entry: %w", err)
	}
	s.files.discard(ctx, revenue.Attachments)
	return nil
}

func revenueBody(r *models.Revenue) string {
	body := fmt.Sprintf("A new revenue entry has been created\n\nDetails:\nAmount: %s\nDescription: %s\nCreated By: %s (%s)\nDate: %s",
		formatAmount(r.Amount), r.Description, r.CreatedByName, r.CreatedBy.Kind, formatDate(r.Date))
	if len(r.Attachments) > 0 {
		body += fmt.Sprintf("\n\nAttachments: %d file(s) uploaded", len(r.Attachments))
	}
	return body
}
