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
	"github.com/yukikurage/project-hub-api/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectTitleRequired = errors.New("project title is required")
	ErrInvalidWorkStatus    = errors.New("invalid status value")
	ErrInvalidDeveloper     = errors.New("unknown developer")
	ErrNotAssigned          = errors.New("developer is not assigned to this project")
)

// ProjectService manages projects, their assignments and deadline events.
type ProjectService struct {
	repos    *repository.Repositories
	files    attachments
	notifier *NotificationService
}

// NewProjectService creates a new ProjectService
func NewProjectService(repos *repository.Repositories, store storage.ObjectStore, notifier *NotificationService) *ProjectService {
	return &ProjectService{
		repos:    repos,
		files:    attachments{store: store},
		notifier: notifier,
	}
}

// ProjectInput represents the information needed to create a project.
type ProjectInput struct {
	Title        string
	Description  string
	Deadline     *time.Time
	Status       models.WorkStatus
	DeveloperIDs []uint64
	Docs         []Upload
}

// ProjectUpdateInput holds optional project changes. Docs are appended and
// RemoveDocs are deleted from storage.
type ProjectUpdateInput struct {
	Title         *string
	Description   *string
	Deadline      *time.Time
	ClearDeadline bool
	Status        *models.WorkStatus
	DeveloperIDs  *[]uint64
	Docs          []Upload
	RemoveDocs    []string
}

// ProjectWithTasks is a project together with its tasks.
type ProjectWithTasks struct {
	models.Project
	Tasks []models.Task `json:"tasks"`
}

func (s *ProjectService) checkDevelopers(ids []uint64) error {
	unique := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	if len(unique) == 0 {
		return nil
	}
	count, err := s.repos.Principals.CountByIDs(models.KindDeveloper, ids)
	if err != nil {
		return fmt.Errorf("failed to check developers: %w", err)
	}
	if count != int64(len(unique)) {
		return ErrInvalidDeveloper
	}
	return nil
}

// Create creates a project, its deadline event and the project notifications.
func (s *ProjectService) Create(ctx context.Context, actor *models.Principal, input ProjectInput) (*models.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrProjectTitleRequired
	}
	status := input.Status
	if status == "" {
		status = models.StatusAssigned
	}
	if !status.Valid() {
		return nil, ErrInvalidWorkStatus
	}
	if err := s.checkDevelopers(input.DeveloperIDs); err != nil {
		return nil, err
	}

	docs, err := s.files.upload(ctx, constants.FolderProjectDocs, input.Docs)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		Title:         title,
		Description:   input.Description,
		Deadline:      input.Deadline,
		Status:        status,
		RelatedDocs:   datatypes.JSONSlice[string](docs),
		CreatedBy:     actor.Ref(),
		LastUpdatedBy: actor.Ref(),
	}

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Projects.Create(project, input.DeveloperIDs); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		created, err := tx.Projects.FindByID(project.ID)
		if err != nil {
			return fmt.Errorf("failed to reload project: %w", err)
		}
		*project = *created
		developerIDs := project.DeveloperIDs()

		if err := projectDeadlineEvent(tx, project, developerIDs, actor.Ref()); err != nil {
			return err
		}

		audience, _, err := projectAudience(tx.Principals, developerIDs)
		if err != nil {
			return err
		}
		content := fmt.Sprintf("New Project created: %s", project.Title)
		fan.Direct(audience, models.NotifyProject, project.ID, content)
		fan.Broadcast(models.NotifyProject, project.ID, content)

		emails, err := emailsOf(tx.Principals, developerRefs(developerIDs))
		if err != nil {
			return err
		}
		fan.Email(emails, fmt.Sprintf("Assigned to a New Project: %s", project.Title), projectAssignedBody(project))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		s.files.discard(ctx, docs)
		return nil, err
	}

	s.notifier.Deliver(ctx, fan)
	return project, nil
}

// Get retrieves a project by ID.
func (s *ProjectService) Get(id uint64) (*models.Project, error) {
	project, err := s.repos.Projects.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// List returns projects, newest first.
func (s *ProjectService) List(params *utils.PaginationParams) ([]models.Project, int64, error) {
	projects, total, err := s.repos.Projects.List(repository.ProjectFilter{Pagination: params})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// ListByStatus returns the projects in a status.
func (s *ProjectService) ListByStatus(status models.WorkStatus) ([]models.Project, error) {
	if !status.Valid() {
		return nil, ErrInvalidWorkStatus
	}
	projects, _, err := s.repos.Projects.List(repository.ProjectFilter{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// AssignedDevelopers loads the developers assigned to a project.
func (s *ProjectService) AssignedDevelopers(id uint64) ([]models.Principal, error) {
	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	developers, err := s.repos.Principals.FindByRefs(developerRefs(project.DeveloperIDs()))
	if err != nil {
		return nil, fmt.Errorf("failed to load developers: %w", err)
	}
	return developers, nil
}

// Update edits a project and re-projects its deadline event.
func (s *ProjectService) Update(ctx context.Context, actor *models.Principal, id uint64, input ProjectUpdateInput) (*models.Project, error) {
	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrProjectTitleRequired
		}
		project.Title = title
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.ClearDeadline {
		project.Deadline = nil
	} else if input.Deadline != nil {
		deadline := *input.Deadline
		project.Deadline = &deadline
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidWorkStatus
		}
		project.Status = *input.Status
	}
	developerIDs := project.DeveloperIDs()
	if input.DeveloperIDs != nil {
		if err := s.checkDevelopers(*input.DeveloperIDs); err != nil {
			return nil, err
		}
		developerIDs = *input.DeveloperIDs
	}

	added, err := s.files.upload(ctx, constants.FolderProjectDocs, input.Docs)
	if err != nil {
		return nil, err
	}
	kept, removed := without(project.RelatedDocs, input.RemoveDocs)
	project.RelatedDocs = datatypes.JSONSlice[string](append(kept, added...))
	project.LastUpdatedBy = actor.Ref()

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Projects.Update(project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		if input.DeveloperIDs != nil {
			if err := tx.Projects.ReplaceAssignments(project.ID, developerIDs); err != nil {
				return fmt.Errorf("failed to update assignments: %w", err)
			}
		}
		updated, err := tx.Projects.FindByID(project.ID)
		if err != nil {
			return fmt.Errorf("failed to reload project: %w", err)
		}
		*project = *updated
		developerIDs = project.DeveloperIDs()

		if err := projectDeadlineEvent(tx, project, developerIDs, actor.Ref()); err != nil {
			return err
		}

		audience, _, err := projectAudience(tx.Principals, developerIDs)
		if err != nil {
			return err
		}
		content := fmt.Sprintf("Project updated: %s", project.Title)
		fan.Direct(audience, models.NotifyProject, project.ID, content)
		fan.Broadcast(models.NotifyProject, project.ID, content)
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		s.files.discard(ctx, added)
		return nil, err
	}

	s.files.discard(ctx, removed)
	s.notifier.Deliver(ctx, fan)
	return project, nil
}

// Delete removes a project, its related events and its stored documents.
func (s *ProjectService) Delete(ctx context.Context, id uint64) error {
	project, err := s.Get(id)
	if err != nil {
		return err
	}
	developerIDs := project.DeveloperIDs()

	fan := &Fanout{}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		audience, managers, err := projectAudience(tx.Principals, developerIDs)
		if err != nil {
			return err
		}

		if err := tx.Events.DeleteByRelated([]models.EventType{
			models.EventProjectDeadline,
			models.EventMeeting,
			models.EventTask,
		}, project.ID); err != nil {
			return fmt.Errorf("failed to delete project events: %w", err)
		}
		if err := tx.Projects.Delete(project.ID); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}

		content := fmt.Sprintf("Project deleted: %s", project.Title)
		fan.Direct(audience, models.NotifyProject, 0, content)
		fan.Broadcast(models.NotifyProject, 0, content)

		emails, err := emailsOf(tx.Principals, developerRefs(developerIDs))
		if err != nil {
			return err
		}
		for _, m := range managers {
			emails = append(emails, m.Email)
		}
		fan.Email(emails, fmt.Sprintf("Project Deleted: %s", project.Title),
			fmt.Sprintf("The project \"%s\" has been deleted.\nProject Details:\nTitle: %s\nDescription: %s",
				project.Title, project.Title, project.Description))
		return fan.Persist(tx.Notifications)
	})
	if err != nil {
		return err
	}

	s.files.discard(ctx, project.RelatedDocs)
	s.notifier.Deliver(ctx, fan)
	return nil
}

// UpdateStatusByDeveloper lets an assigned developer move a project's status.
func (s *ProjectService) UpdateStatusByDeveloper(developer *models.Principal, id uint64, status models.WorkStatus) (*models.Project, error) {
	if !status.Valid() {
		return nil, ErrInvalidWorkStatus
	}
	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	assigned, err := s.repos.Projects.IsAssigned(project.ID, developer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}
	if !assigned {
		return nil, ErrNotAssigned
	}

	project.Status = status
	project.LastUpdatedBy = developer.Ref()
	if err := s.repos.Projects.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}
	return project, nil
}

// DeveloperProjects returns the projects a developer is assigned to.
func (s *ProjectService) DeveloperProjects(developerID uint64) ([]models.Project, error) {
	projects, _, err := s.repos.Projects.List(repository.ProjectFilter{DeveloperID: &developerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// ClientProjects returns the projects linked to a client with their tasks.
func (s *ProjectService) ClientProjects(clientID uint64) ([]ProjectWithTasks, error) {
	ids, err := s.repos.Principals.ClientProjectIDs(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client projects: %w", err)
	}
	if ids == nil {
		ids = []uint64{}
	}

	projects, _, err := s.repos.Projects.List(repository.ProjectFilter{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	tasks, err := s.repos.Tasks.List(repository.TaskFilter{ProjectIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	byProject := make(map[uint64][]models.Task, len(projects))
	for _, t := range tasks {
		byProject[t.ProjectID] = append(byProject[t.ProjectID], t)
	}

	result := make([]ProjectWithTasks, 0, len(projects))
	for _, p := range projects {
		projectTasks := byProject[p.ID]
		if projectTasks == nil {
			projectTasks = []models.Task{}
		}
		result = append(result, ProjectWithTasks{Project: p, Tasks: projectTasks})
	}
	return result, nil
}

func projectAssignedBody(p *models.Project) string {
	deadline := "not set"
	if p.Deadline != nil {
		deadline = formatDate(*p.Deadline)
	}

	var docs strings.Builder
	for i, doc := range p.RelatedDocs {
		fmt.Fprintf(&docs, "%d: %s\n", i+1, doc)
	}
	return fmt.Sprintf("You have been assigned to a new project: %s\nDescription: %s\nDeadline: %s\nRelated Documents:\n%s",
		p.Title, p.Description, deadline, docs.String())
}
