package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound             = errors.New("task not found")
	ErrTaskNameRequired         = errors.New("task name is required")
	ErrTaskDatesOutOfOrder      = errors.New("task end date is before its start date")
	ErrParticipantsNotInProject = errors.New("all participants must be part of the project")
	ErrProgressContentRequired  = errors.New("update content is required")
	ErrProgressNotFound         = errors.New("task update not found")
	ErrFinalDescriptionRequired = errors.New("final result description is required")
	ErrAIServiceNotConfigured   = errors.New("AI service is not configured")
	ErrAINoTasksGenerated       = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks           = errors.New("no valid tasks could be drafted from AI output")
	ErrAIRequestFailed          = errors.New("AI request failed")
)

// TaskService handles project tasks, their progress log and final results.
type TaskService struct {
	repos     *repository.Repositories
	files     attachments
	notifier  *NotificationService
	aiService *AIService
	now       func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(repos *repository.Repositories, store storage.ObjectStore, notifier *NotificationService, aiService *AIService) *TaskService {
	return &TaskService{
		repos:     repos,
		files:     attachments{store: store},
		notifier:  notifier,
		aiService: aiService,
		now:       time.Now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID    uint64
	TaskName     string
	Description  string
	StartDate    time.Time
	EndDate      time.Time
	Status       models.WorkStatus
	DeveloperIDs []uint64
	Docs         []Upload
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	TaskName     *string
	Description  *string
	StartDate    *time.Time
	EndDate      *time.Time
	Status       *models.WorkStatus
	DeveloperIDs *[]uint64
	Docs         []Upload
	RemoveDocs   []string
}

// ProgressInput represents one entry added to a task's update log
type ProgressInput struct {
	Content string
	Media   []Upload
}

// FinalResultInput represents the final result of a task
type FinalResultInput struct {
	Description string
	Images      []Upload
}

func (s *TaskService) checkParticipants(tx *repository.Repositories, projectID uint64, developerIDs []uint64) error {
	unique := make(map[uint64]struct{}, len(developerIDs))
	for _, id := range developerIDs {
		unique[id] = struct{}{}
	}
	if len(unique) == 0 {
		return nil
	}
	count, err := tx.Projects.CountAssigned(projectID, developerIDs)
	if err != nil {
		return fmt.Errorf("failed to check participants: %w", err)
	}
	if count != int64(len(unique)) {
		return ErrParticipantsNotInProject
	}
	return nil
}

// CreateTask creates a task, its paired calendar event and participant notifications.
func (s *TaskService) CreateTask(ctx context.Context, actor *models.Principal, input CreateTaskInput) (*models.Task, error) {
	name := strings.TrimSpace(input.TaskName)
	if name == "" {
		return nil, ErrTaskNameRequired
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, ErrTaskDatesOutOfOrder
	}
	status := input.Status
	if status == "" {
		status = models.StatusAssigned
	}
	if !status.Valid() {
		return nil, ErrInvalidWorkStatus
	}

	if _, err := s.repos.Projects.FindByID(input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if err := s.checkParticipants(s.repos, input.ProjectID, input.DeveloperIDs); err != nil {
		return nil, err
	}

	docs, err := s.files.upload(ctx, constants.FolderTaskDocs, input.Docs)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:        input.ProjectID,
		TaskName:         name,
		Description:      input.Description,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		Status:           status,
		CreatedBy:        actor.Ref(),
		RelatedDocuments: datatypes.JSONSlice[string](docs),
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Tasks.Create(task, input.DeveloperIDs); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		created, err := tx.Tasks.FindByID(task.ID)
		if err != nil {
			return fmt.Errorf("failed to reload task: %w", err)
		}
		*task = *created
		participants := task.ParticipantIDs()

		if _, err := projectTaskEvent(tx, task, participants, actor.Ref()); err != nil {
			return err
		}

		fan.Direct(developerRefs(participants), models.NotifyTask, task.ID,
			fmt.Sprintf("New Task created: %s", task.TaskName))
		emails, err := emailsOf(tx.Principals, developerRefs(participants))
		if err != nil {
			return err
		}
		fan.Email(emails, fmt.Sprintf("New Task Assigned: %s", task.TaskName), taskAssignedBody(task))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		s.files.discard(ctx, docs)
		return nil, err
	}

	s.notifier.Deliver(ctx, fan)
	return task, nil
}

// GetTask retrieves a task with its participants, progress log and final result.
func (s *TaskService) GetTask(id uint64) (*models.Task, error) {
	task, err := s.repos.Tasks.FindByID(id, "Updates", "FinalResult", "Project")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) findTask(id uint64) (*models.Task, error) {
	task, err := s.repos.Tasks.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListTasks returns every task.
func (s *TaskService) ListTasks() ([]models.Task, error) {
	return s.list(repository.TaskFilter{Preload: []string{"Project"}})
}

// ListProjectTasks returns the tasks of a project.
func (s *TaskService) ListProjectTasks(projectID uint64) ([]models.Task, error) {
	return s.list(repository.TaskFilter{ProjectIDs: []uint64{projectID}})
}

// ListDeveloperTasks returns the tasks a developer takes part in.
func (s *TaskService) ListDeveloperTasks(developerID uint64) ([]models.Task, error) {
	return s.list(repository.TaskFilter{DeveloperID: &developerID, Preload: []string{"Project"}})
}

func (s *TaskService) list(filter repository.TaskFilter) ([]models.Task, error) {
	tasks, err := s.repos.Tasks.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask edits a task, refreshes its paired event and notifies participants.
func (s *TaskService) UpdateTask(ctx context.Context, actor *models.Principal, id uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(id)
	if err != nil {
		return nil, err
	}

	if input.TaskName != nil {
		name := strings.TrimSpace(*input.TaskName)
		if name == "" {
			return nil, ErrTaskNameRequired
		}
		task.TaskName = name
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.StartDate != nil {
		task.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		task.EndDate = *input.EndDate
	}
	if task.EndDate.Before(task.StartDate) {
		return nil, ErrTaskDatesOutOfOrder
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidWorkStatus
		}
		task.Status = *input.Status
	}
	if input.DeveloperIDs != nil {
		if err := s.checkParticipants(s.repos, task.ProjectID, *input.DeveloperIDs); err != nil {
			return nil, err
		}
	}

	added, err := s.files.upload(ctx, constants.FolderTaskDocs, input.Docs)
	if err != nil {
		return nil, err
	}
	kept, removed := without(task.RelatedDocuments, input.RemoveDocs)
	task.RelatedDocuments = datatypes.JSONSlice[string](append(kept, added...))

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Tasks.Update(task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if input.DeveloperIDs != nil {
			if err := tx.Tasks.ReplaceParticipants(task.ID, *input.DeveloperIDs); err != nil {
				return fmt.Errorf("failed to update participants: %w", err)
			}
		}
		updated, err := tx.Tasks.FindByID(task.ID)
		if err != nil {
			return fmt.Errorf("failed to reload task: %w", err)
		}
		*task = *updated
		participants := task.ParticipantIDs()

		if _, err := projectTaskEvent(tx, task, participants, actor.Ref()); err != nil {
			return err
		}

		fan.Direct(developerRefs(participants), models.NotifyTask, task.ID,
			fmt.Sprintf("Task updated: %s", task.TaskName))
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

// DeleteTask removes a task, its paired event and its stored files.
func (s *TaskService) DeleteTask(ctx context.Context, id uint64) error {
	task, err := s.repos.Tasks.FindByID(id, "Updates", "FinalResult")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Events.DeleteByTask(task.ID); err != nil {
			return fmt.Errorf("failed to delete task event: %w", err)
		}
		if err := tx.Tasks.Delete(task.ID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		fan.Direct(developerRefs(task.ParticipantIDs()), models.NotifyTask, task.ID,
			fmt.Sprintf("Task deleted: %s", task.TaskName))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		return err
	}

	stored := append([]string{}, task.RelatedDocuments...)
	for _, u := range task.Updates {
		stored = append(stored, u.RelatedMedia...)
	}
	if task.FinalResult != nil {
		stored = append(stored, task.FinalResult.ResultImages...)
	}
	s.files.discard(ctx, stored)
	s.notifier.Deliver(ctx, fan)
	return nil
}

// AddProgress appends an entry to a task's update log.
func (s *TaskService) AddProgress(ctx context.Context, actor *models.Principal, taskID uint64, input ProgressInput) (*models.TaskProgress, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrProgressContentRequired
	}
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	media, err := s.files.upload(ctx, constants.FolderTaskMedia, input.Media)
	if err != nil {
		return nil, err
	}

	progress := &models.TaskProgress{
		UpdateID:     uuid.NewString(),
		TaskID:       task.ID,
		Content:      content,
		Author:       actor.Ref(),
		AuthorName:   actor.Username,
		RelatedMedia: datatypes.JSONSlice[string](media),
		Timestamp:    s.now(),
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Tasks.AddProgress(progress); err != nil {
			return fmt.Errorf("failed to add task update: %w", err)
		}
		fan.Direct(developerRefs(task.ParticipantIDs()), models.NotifyTask, task.ID,
			fmt.Sprintf("Task update added: %s", task.TaskName))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		s.files.discard(ctx, media)
		return nil, err
	}

	s.notifier.Deliver(ctx, fan)
	return progress, nil
}

// DeleteProgress removes an entry from a task's update log along with its media.
func (s *TaskService) DeleteProgress(ctx context.Context, taskID uint64, updateID string) error {
	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	progress, err := s.repos.Tasks.FindProgress(taskID, updateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgressNotFound
		}
		return fmt.Errorf("failed to find task update: %w", err)
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Tasks.DeleteProgress(taskID, updateID); err != nil {
			return fmt.Errorf("failed to delete task update: %w", err)
		}
		fan.Direct(developerRefs(task.ParticipantIDs()), models.NotifyTask, task.ID,
			fmt.Sprintf("Task update deleted: %s", task.TaskName))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		return err
	}

	s.files.discard(ctx, progress.RelatedMedia)
	s.notifier.Deliver(ctx, fan)
	return nil
}

// AddFinalResult records the final result of a task and completes it.
// A previous result is replaced.
func (s *TaskService) AddFinalResult(ctx context.Context, actor *models.Principal, taskID uint64, input FinalResultInput) (*models.Task, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrFinalDescriptionRequired
	}
	task, err := s.repos.Tasks.FindByID(taskID, "FinalResult")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	images, err := s.files.upload(ctx, constants.FolderFinalResults, input.Images)
	if err != nil {
		return nil, err
	}

	var replaced []string
	if task.FinalResult != nil {
		replaced = task.FinalResult.ResultImages
	}
	result := &models.TaskFinalResult{
		TaskID:       task.ID,
		Description:  description,
		ResultImages: datatypes.JSONSlice[string](images),
		Author:       actor.Ref(),
		AuthorName:   actor.Username,
	}
	task.Status = models.StatusCompleted

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Tasks.SaveFinalResult(result); err != nil {
			return fmt.Errorf("failed to save final result: %w", err)
		}
		if err := tx.Tasks.Update(task); err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}
		fan.Direct(developerRefs(task.ParticipantIDs()), models.NotifyTask, task.ID,
			fmt.Sprintf("Final result added for task: %s", task.TaskName))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		s.files.discard(ctx, images)
		return nil, err
	}

	task.FinalResult = result
	s.files.discard(ctx, replaced)
	s.notifier.Deliver(ctx, fan)
	return task, nil
}

// SuggestTasks asks the AI service to draft tasks for a project.
func (s *TaskService) SuggestTasks(ctx context.Context, projectID uint64, instructions string) ([]GeneratedTask, error) {
	if s.aiService == nil || !s.aiService.Enabled() {
		return nil, ErrAIServiceNotConfigured
	}

	project, err := s.repos.Projects.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	drafts, err := s.aiService.GenerateProjectTasks(ctx, project, instructions, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIRequestFailed, err)
	}
	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	valid := make([]GeneratedTask, 0, len(drafts))
	for _, d := range drafts {
		d.TaskName = strings.TrimSpace(d.TaskName)
		if d.TaskName == "" {
			continue
		}
		if d.EndDate.Before(d.StartDate) {
			d.EndDate = d.StartDate
		}
		valid = append(valid, d)
		if len(valid) == constants.MaxAIGeneratedTasks {
			break
		}
	}
	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}
	return valid, nil
}

func taskAssignedBody(t *models.Task) string {
	var docs strings.Builder
	for i, doc := range t.RelatedDocuments {
		fmt.Fprintf(&docs, "%d: %s\n", i+1, doc)
	}
	return fmt.Sprintf("You have been assigned a new task: %s\nDescription: %s\nStart Date: %s\nEnd Date: %s\nRelated Documents:\n%s",
		t.TaskName, t.Description, formatDate(t.StartDate), formatDate(t.EndDate), docs.String())
}
