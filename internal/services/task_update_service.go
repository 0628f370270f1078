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
	ErrTaskUpdateNotFound        = errors.New("task update not found")
	ErrNotTaskUpdateAuthor       = errors.New("only the author can modify this update")
	ErrCommentNotFound           = errors.New("comment not found")
	ErrCommentTextRequired       = errors.New("comment text is required")
	ErrNotCommentAuthor          = errors.New("not authorized to delete this comment")
	ErrTaskUpdateDatesOutOfOrder = errors.New("update end date is before its start date")
)

// TaskUpdateService manages progress reports on marketing tasks and their comments.
type TaskUpdateService struct {
	repos    *repository.Repositories
	files    attachments
	notifier *NotificationService
}

// NewTaskUpdateService creates a new TaskUpdateService
func NewTaskUpdateService(repos *repository.Repositories, store storage.ObjectStore, notifier *NotificationService) *TaskUpdateService {
	return &TaskUpdateService{
		repos:    repos,
		files:    attachments{store: store},
		notifier: notifier,
	}
}

// TaskUpdateInput represents a new progress report
type TaskUpdateInput struct {
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	LeadsInfo   []models.LeadContact
	Attachments []Upload
}

// TaskUpdateEditInput holds optional changes to a progress report
type TaskUpdateEditInput struct {
	Description       *string
	LeadsInfo         *[]models.LeadContact
	Attachments       []Upload
	RemoveAttachments []string
}

func (s *TaskUpdateService) findTask(tx *repository.Repositories, id uint64) (*models.MarketingTask, error) {
	task, err := tx.MarketingTasks.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMarketingTaskNotFound
		}
		return nil, fmt.Errorf("failed to find marketing task: %w", err)
	}
	return task, nil
}

// Get retrieves a task update with its comments.
func (s *TaskUpdateService) Get(id uint64) (*models.TaskUpdate, error) {
	update, err := s.repos.TaskUpdates.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskUpdateNotFound
		}
		return nil, fmt.Errorf("failed to find task update: %w", err)
	}
	return update, nil
}

// Create adds a progress report to a marketing task. Only assignees may report.
func (s *TaskUpdateService) Create(ctx context.Context, actor *models.Principal, taskID uint64, input TaskUpdateInput) (*models.TaskUpdate, error) {
	task, err := s.findTask(s.repos, taskID)
	if err != nil {
		return nil, err
	}
	if !isAssignee(task, actor.Ref()) {
		return nil, ErrNotAssignee
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, ErrTaskUpdateDatesOutOfOrder
	}

	urls, err := s.files.upload(ctx, constants.FolderAttachments, input.Attachments)
	if err != nil {
		return nil, err
	}

	update := &models.TaskUpdate{
		MarketingTaskID: task.ID,
		Description:     input.Description,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Attachments:     datatypes.JSONSlice[string](urls),
		LeadsInfo:       datatypes.JSONSlice[models.LeadContact](input.LeadsInfo),
		UpdatedBy:       actor.Ref(),
		UpdatedByName:   actor.Username,
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.TaskUpdates.Create(update); err != nil {
			return fmt.Errorf("failed to create task update: %w", err)
		}

		assignees := task.AssigneeRefs()
		notifyAssignees(fan, actor.Ref(), assignees, models.NotifyTaskUpdate, update.ID,
			fmt.Sprintf("New update for task: %s", task.TaskName))

		emails, err := emailsOf(tx.Principals, append(assignees, task.CreatedBy))
		if err != nil {
			return err
		}
		fan.Email(emails, fmt.Sprintf("Task Update: %s", task.TaskName), taskUpdateBody(task, update))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		s.files.discard(ctx, urls)
		return nil, err
	}

	update.Comments = []models.TaskUpdateComment{}
	s.notifier.Deliver(ctx, fan)
	return update, nil
}

// ListByTask returns the updates of a marketing task, newest first.
func (s *TaskUpdateService) ListByTask(taskID uint64) ([]models.TaskUpdate, error) {
	if _, err := s.findTask(s.repos, taskID); err != nil {
		return nil, err
	}
	updates, err := s.repos.TaskUpdates.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task updates: %w", err)
	}
	return updates, nil
}

// ListByProject returns the updates of every marketing task of a project.
func (s *TaskUpdateService) ListByProject(projectID uint64) ([]models.TaskUpdate, error) {
	updates, err := s.repos.TaskUpdates.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task updates: %w", err)
	}
	return updates, nil
}

// Update edits a progress report. Only its author may edit it.
func (s *TaskUpdateService) Update(ctx context.Context, actor *models.Principal, id uint64, input TaskUpdateEditInput) (*models.TaskUpdate, error) {
	update, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if update.UpdatedBy != actor.Ref() {
		return nil, ErrNotTaskUpdateAuthor
	}
	task, err := s.findTask(s.repos, update.MarketingTaskID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil && strings.TrimSpace(*input.Description) != "" {
		update.Description = *input.Description
	}
	if input.LeadsInfo != nil {
		update.LeadsInfo = datatypes.JSONSlice[models.LeadContact](*input.LeadsInfo)
	}

	added, err := s.files.upload(ctx, constants.FolderAttachments, input.Attachments)
	if err != nil {
		return nil, err
	}
	kept, removed := without(update.Attachments, input.RemoveAttachments)
	update.Attachments = datatypes.JSONSlice[string](append(kept, added...))

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.TaskUpdates.Update(update); err != nil {
			return fmt.Errorf("failed to update task update: %w", err)
		}
		notifyAssignees(fan, actor.Ref(), task.AssigneeRefs(), models.NotifyTaskUpdate, update.ID,
			fmt.Sprintf("Task update modified for: %s", task.TaskName))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		s.files.discard(ctx, added)
		return nil, err
	}

	s.files.discard(ctx, removed)
	s.notifier.Deliver(ctx, fan)
	return update, nil
}

// Delete removes a progress report and its attachments. Only its author may delete it.
func (s *TaskUpdateService) Delete(ctx context.Context, actor *models.Principal, id uint64) error {
	update, err := s.Get(id)
	if err != nil {
		return err
	}
	if update.UpdatedBy != actor.Ref() {
		return ErrNotTaskUpdateAuthor
	}
	task, err := s.findTask(s.repos, update.MarketingTaskID)
	if err != nil {
		return err
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.TaskUpdates.Delete(update.ID); err != nil {
			return fmt.Errorf("failed to delete task update: %w", err)
		}
		notifyAssignees(fan, actor.Ref(), task.AssigneeRefs(), models.NotifyTaskUpdateDeleted, task.ID,
			fmt.Sprintf("Task update deleted for: %s", task.TaskName))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		return err
	}

	s.files.discard(ctx, update.Attachments)
	s.notifier.Deliver(ctx, fan)
	return nil
}

// AddComment adds a comment to a progress report.
func (s *TaskUpdateService) AddComment(ctx context.Context, actor *models.Principal, updateID uint64, text string) (*models.TaskUpdate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentTextRequired
	}
	update, err := s.Get(updateID)
	if err != nil {
		return nil, err
	}
	task, err := s.findTask(s.repos, update.MarketingTaskID)
	if err != nil {
		return nil, err
	}

	comment := &models.TaskUpdateComment{
		TaskUpdateID: update.ID,
		Text:         text,
		Author:       actor.Ref(),
		AuthorName:   actor.Username,
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.TaskUpdates.AddComment(comment); err != nil {
			return fmt.Errorf("failed to add comment: %w", err)
		}
		notifyAssignees(fan, actor.Ref(), task.AssigneeRefs(), models.NotifyComment, update.ID,
			fmt.Sprintf("New comment by %s (%s) on task update for: %s", actor.Username, actor.Kind, task.TaskName))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		return nil, err
	}

	update.Comments = append(update.Comments, *comment)
	s.notifier.Deliver(ctx, fan)
	return update, nil
}

// DeleteComment removes a comment. Admins may delete any comment, others only their own.
func (s *TaskUpdateService) DeleteComment(ctx context.Context, actor *models.Principal, updateID, commentID uint64) (*models.TaskUpdate, error) {
	update, err := s.Get(updateID)
	if err != nil {
		return nil, err
	}
	comment, err := s.repos.TaskUpdates.FindComment(updateID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	if actor.Kind != models.KindAdmin && comment.Author != actor.Ref() {
		return nil, ErrNotCommentAuthor
	}
	task, err := s.findTask(s.repos, update.MarketingTaskID)
	if err != nil {
		return nil, err
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.TaskUpdates.DeleteComment(comment.ID); err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		fan.Direct(task.AssigneeRefs(), models.NotifyCommentDeleted, update.ID,
			fmt.Sprintf("Comment deleted on task update for: %s", task.TaskName))
		if actor.Kind != models.KindAdmin {
			fan.Broadcast(models.NotifyCommentDeleted, update.ID,
				fmt.Sprintf("Comment deleted by %s on task update for: %s", actor.Kind, task.TaskName))
		}
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		return nil, err
	}

	comments := make([]models.TaskUpdateComment, 0, len(update.Comments))
	for _, c := range update.Comments {
		if c.ID != comment.ID {
			comments = append(comments, c)
		}
	}
	update.Comments = comments
	s.notifier.Deliver(ctx, fan)
	return update, nil
}

func taskUpdateBody(task *models.MarketingTask, u *models.TaskUpdate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new update has been added to the task: %s\n\nUpdate Details:\nDescription: %s\n", task.TaskName, u.Description)
	if u.StartDate != nil && u.EndDate != nil {
		fmt.Fprintf(&b, "Period: %s to %s\n", formatDate(*u.StartDate), formatDate(*u.EndDate))
	}
	fmt.Fprintf(&b, "Updated by: %s\n", u.UpdatedByName)
	if len(u.LeadsInfo) > 0 {
		b.WriteString("\nNew Leads Information:\n")
		for _, lead := range u.LeadsInfo {
			fmt.Fprintf(&b, "- Name: %s\n  Contact: %s\n  Description: %s\n", lead.Name, lead.Contact, lead.Description)
		}
	}
	if len(u.Attachments) > 0 {
		fmt.Fprintf(&b, "\nAttachments: %d file(s) uploaded\n", len(u.Attachments))
	}
	return b.String()
}
