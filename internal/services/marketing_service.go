package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrMarketingTaskNotFound    = errors.New("marketing task not found")
	ErrMarketingNameRequired    = errors.New("marketing task name is required")
	ErrInvalidPriority          = errors.New("invalid priority")
	ErrInvalidMarketingStatus   = errors.New("invalid marketing task status")
	ErrInvalidAssignee          = errors.New("assignees must be existing marketing users or content creators")
	ErrNotAssignee              = errors.New("you are not assigned to this task")
	ErrInvalidLeads             = errors.New("leads must not be negative")
	ErrMarketingDatesOutOfOrder = errors.New("marketing task end date is before its start date")
)

// MarketingService manages marketing tasks assigned to marketing users and
// content creators.
type MarketingService struct {
	repos    *repository.Repositories
	files    attachments
	notifier *NotificationService
}

// NewMarketingService creates a new MarketingService
func NewMarketingService(repos *repository.Repositories, store storage.ObjectStore, notifier *NotificationService) *MarketingService {
	return &MarketingService{
		repos:    repos,
		files:    attachments{store: store},
		notifier: notifier,
	}
}

// MarketingTaskInput represents input for creating a marketing task
type MarketingTaskInput struct {
	TaskName        string
	TaskDescription string
	ProjectID       uint64
	Assignees       []models.PrincipalRef
	Priority        models.MarketingPriority
	Status          models.MarketingStatus
	StartDate       time.Time
	EndDate         time.Time
	Docs            []Upload
}

// MarketingTaskUpdateInput holds optional marketing task changes
type MarketingTaskUpdateInput struct {
	TaskName        *string
	TaskDescription *string
	Assignees       *[]models.PrincipalRef
	Priority        *models.MarketingPriority
	Status          *models.MarketingStatus
	StartDate       *time.Time
	EndDate         *time.Time
	Docs            []Upload
	RemoveDocs      []string
}

// notifyAssignees adds one notification per assignee and, unless an admin
// acted, a broadcast for the admins.
func notifyAssignees(fan *Fanout, actor models.PrincipalRef, assignees []models.PrincipalRef, kind string, relatedID uint64, content string) {
	fan.Direct(assignees, kind, relatedID, content)
	if actor.Kind != models.KindAdmin {
		fan.Broadcast(kind, relatedID, content)
	}
}

func (s *MarketingService) checkAssignees(refs []models.PrincipalRef) ([]models.MarketingAssignee, error) {
	seen := make(map[models.PrincipalRef]struct{}, len(refs))
	for _, ref := range refs {
		if ref.Kind != models.KindMarketing && ref.Kind != models.KindContentCreator {
			return nil, ErrInvalidAssignee
		}
		seen[ref] = struct{}{}
	}

	found, err := s.repos.Principals.FindByRefs(refs)
	if err != nil {
		return nil, fmt.Errorf("failed to check assignees: %w", err)
	}
	if len(found) != len(seen) {
		return nil, ErrInvalidAssignee
	}

	assignees := make([]models.MarketingAssignee, 0, len(found))
	for _, p := range found {
		assignees = append(assignees, models.MarketingAssignee{AssigneeKind: p.Kind, AssigneeID: p.ID})
	}
	return assignees, nil
}

// Create creates a marketing task and notifies and emails its assignees.
func (s *MarketingService) Create(ctx context.Context, actor *models.Principal, input MarketingTaskInput) (*models.MarketingTask, error) {
	name := strings.TrimSpace(input.TaskName)
	if name == "" {
		return nil, ErrMarketingNameRequired
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}
	status := input.Status
	if status == "" {
		status = models.MarketingPending
	}
	if !status.Valid() {
		return nil, ErrInvalidMarketingStatus
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, ErrMarketingDatesOutOfOrder
	}
	if _, err := s.repos.Projects.FindByID(input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	assignees, err := s.checkAssignees(input.Assignees)
	if err != nil {
		return nil, err
	}

	docs, err := s.files.upload(ctx, constants.FolderMarketingDocs, input.Docs)
	if err != nil {
		return nil, err
	}

	task := &models.MarketingTask{
		TaskName:        name,
		TaskDescription: input.TaskDescription,
		ProjectID:       input.ProjectID,
		Priority:        priority,
		Status:          status,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		CreatedBy:       actor.Ref(),
		RelatedDocs:     datatypes.JSONSlice[string](docs),
		Assignees:       assignees,
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.MarketingTasks.Create(task); err != nil {
			return fmt.Errorf("failed to create marketing task: %w", err)
		}

		refs := task.AssigneeRefs()
		notifyAssignees(fan, actor.Ref(), refs, models.NotifyMarketingTask, task.ID,
			fmt.Sprintf("New Marketing Task assigned: %s", task.TaskName))
		emails, err := emailsOf(tx.Principals, refs)
		if err != nil {
			return err
		}
		fan.Email(emails, fmt.Sprintf("New Marketing Task Assigned: %s", task.TaskName),
			fmt.Sprintf("You have been assigned a new marketing task: %s\nDescription: %s\nStart Date: %s\nEnd Date: %s",
				task.TaskName, task.TaskDescription, formatDate(task.StartDate), formatDate(task.EndDate)))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		s.files.discard(ctx, docs)
		return nil, err
	}

	s.notifier.Deliver(ctx, fan)
	return task, nil
}

// Get retrieves a marketing task with its assignees.
func (s *MarketingService) Get(id uint64) (*models.MarketingTask, error) {
	task, err := s.repos.MarketingTasks.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMarketingTaskNotFound
		}
		return nil, fmt.Errorf("failed to find marketing task: %w", err)
	}
	return task, nil
}

// List returns every marketing task.
func (s *MarketingService) List() ([]models.MarketingTask, error) {
	return s.list(repository.MarketingTaskFilter{})
}

// ListByProject returns the marketing tasks of a project.
func (s *MarketingService) ListByProject(projectID uint64) ([]models.MarketingTask, error) {
	return s.list(repository.MarketingTaskFilter{ProjectID: &projectID})
}

// ListAssigned returns the marketing tasks assigned to a principal.
func (s *MarketingService) ListAssigned(ref models.PrincipalRef) ([]models.MarketingTask, error) {
	return s.list(repository.MarketingTaskFilter{Assignee: &ref})
}

func (s *MarketingService) list(filter repository.MarketingTaskFilter) ([]models.MarketingTask, error) {
	tasks, err := s.repos.MarketingTasks.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list marketing tasks: %w", err)
	}
	return tasks, nil
}

// Update edits a marketing task and notifies its assignees.
func (s *MarketingService) Update(ctx context.Context, actor *models.Principal, id uint64, input MarketingTaskUpdateInput) (*models.MarketingTask, error) {
	task, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.TaskName != nil {
		name := strings.TrimSpace(*input.TaskName)
		if name == "" {
			return nil, ErrMarketingNameRequired
		}
		task.TaskName = name
	}
	if input.TaskDescription != nil {
		task.TaskDescription = *input.TaskDescription
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidMarketingStatus
		}
		task.Status = *input.Status
	}
	if input.StartDate != nil {
		task.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		task.EndDate = *input.EndDate
	}
	if task.EndDate.Before(task.StartDate) {
		return nil, ErrMarketingDatesOutOfOrder
	}
	if input.Assignees != nil {
		assignees, err := s.checkAssignees(*input.Assignees)
		if err != nil {
			return nil, err
		}
		task.Assignees = assignees
	}

	added, err := s.files.upload(ctx, constants.FolderMarketingDocs, input.Docs)
	if err != nil {
		return nil, err
	}
	kept, removed := without(task.RelatedDocs, input.RemoveDocs)
	task.RelatedDocs = datatypes.JSONSlice[string](append(kept, added...))

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.MarketingTasks.Update(task); err != nil {
			return fmt.Errorf("failed to update marketing task: %w", err)
		}
		if input.Assignees != nil {
			if err := tx.MarketingTasks.ReplaceAssignees(task.ID, task.Assignees); err != nil {
				return fmt.Errorf("failed to update assignees: %w", err)
			}
		}
		notifyAssignees(fan, actor.Ref(), task.AssigneeRefs(), models.NotifyMarketingTask, task.ID,
			fmt.Sprintf("Marketing Task updated: %s", task.TaskName))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		s.files.discard(ctx, added)
		return nil, err
	}

	s.files.discard(ctx, removed)
	s.notifier.Deliver(ctx, fan)
	return task, nil
}

// Delete removes a marketing task, its updates and its stored documents.
func (s *MarketingService) Delete(ctx context.Context, actor *models.Principal, id uint64) error {
	task, err := s.Get(id)
	if err != nil {
		return err
	}

	var stored []string
	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		updates, err := tx.TaskUpdates.ListByTask(task.ID)
		if err != nil {
			return fmt.Errorf("failed to list task updates: %w", err)
		}
		for _, u := range updates {
			if err := tx.TaskUpdates.Delete(u.ID); err != nil {
				return fmt.Errorf("failed to delete task update: %w", err)
			}
			stored = append(stored, u.Attachments...)
		}
		if err := tx.MarketingTasks.Delete(task.ID); err != nil {
			return fmt.Errorf("failed to delete marketing task: %w", err)
		}
		notifyAssignees(fan, actor.Ref(), task.AssigneeRefs(), models.NotifyMarketingTask, task.ID,
			fmt.Sprintf("Marketing Task deleted: %s", task.TaskName))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		return err
	}

	s.files.discard(ctx, append(stored, task.RelatedDocs...))
	s.notifier.Deliver(ctx, fan)
	return nil
}

// UpdateLeads sets the leads counter of a task and notifies its creator.
// Marketing users and content creators may only update their own tasks.
func (s *MarketingService) UpdateLeads(ctx context.Context, actor *models.Principal, id uint64, leads int) (*models.MarketingTask, error) {
	if leads < 0 {
		return nil, ErrInvalidLeads
	}
	task, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if actor.Kind == models.KindMarketing || actor.Kind == models.KindContentCreator {
		if !isAssignee(task, actor.Ref()) {
			return nil, ErrNotAssignee
		}
	}

	task.Leads = leads

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.MarketingTasks.Update(task); err != nil {
			return fmt.Errorf("failed to update leads: %w", err)
		}
		fan.Direct([]models.PrincipalRef{task.CreatedBy}, models.NotifyMarketingTask, task.ID,
			fmt.Sprintf("Leads updated for task: %s. New leads count: %d", task.TaskName, leads))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Deliver(ctx, fan)
	return task, nil
}

func isAssignee(task *models.MarketingTask, ref models.PrincipalRef) bool {
	for _, a := range task.Assignees {
		if a.Ref() == ref {
			return true
		}
	}
	return false
}
