package repository

import (
	"time"

	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/utils"
	"gorm.io/gorm"
)

// PrincipalRepository defines the interface for principal data access
type PrincipalRepository interface {
	// Create creates a new principal
	Create(p *models.Principal) error

	// FindByID finds a principal of the given kind by ID
	FindByID(kind models.PrincipalKind, id uint64) (*models.Principal, error)

	// FindByEmail finds a principal of the given kind by email
	FindByEmail(kind models.PrincipalKind, email string) (*models.Principal, error)

	// List lists all principals of a kind
	List(kind models.PrincipalKind) ([]models.Principal, error)

	// FindByRefs loads every principal addressed by refs
	FindByRefs(refs []models.PrincipalRef) ([]models.Principal, error)

	// CountByIDs counts how many of the given ids exist for a kind
	CountByIDs(kind models.PrincipalKind, ids []uint64) (int64, error)

	// Update updates a principal
	Update(p *models.Principal) error

	// Delete soft deletes a principal and its team memberships
	Delete(kind models.PrincipalKind, id uint64) error

	// AddMembers adds team members to a manager, skipping existing entries
	AddMembers(managerID uint64, members []models.ManagerMember) error

	// ListMembers lists a manager's team members, optionally filtered by kind
	ListMembers(managerID uint64, kinds ...models.PrincipalKind) ([]models.ManagerMember, error)

	// ManagersOf returns the distinct managers owning any of the given members
	ManagersOf(memberKind models.PrincipalKind, memberIDs []uint64) ([]models.Principal, error)

	// SetClientProjects sets the projects linked to a client
	SetClientProjects(clientID uint64, projectIDs []uint64) error

	// ClientProjectIDs lists the projects linked to a client
	ClientProjectIDs(clientID uint64) ([]uint64, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a project and its developer assignments
	Create(project *models.Project, developerIDs []uint64) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// List retrieves projects with filtering and pagination
	List(filter ProjectFilter) ([]models.Project, int64, error)

	// Update updates a project's own columns
	Update(project *models.Project) error

	// ReplaceAssignments sets the assigned developers of a project
	ReplaceAssignments(projectID uint64, developerIDs []uint64) error

	// IsAssigned reports whether a developer is assigned to a project
	IsAssigned(projectID, developerID uint64) (bool, error)

	// CountAssigned counts how many of the developers are assigned to a project
	CountAssigned(projectID uint64, developerIDs []uint64) (int64, error)

	// Delete soft deletes a project and removes its assignments
	Delete(id uint64) error
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	Status      *models.WorkStatus
	DeveloperID *uint64
	IDs         []uint64
	Pagination  *utils.PaginationParams
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a task and its participants
	Create(task *models.Task, developerIDs []uint64) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering
	List(filter TaskFilter) ([]models.Task, error)

	// Update updates a task's own columns
	Update(task *models.Task) error

	// ReplaceParticipants sets the participants of a task
	ReplaceParticipants(taskID uint64, developerIDs []uint64) error

	// Delete soft deletes a task and removes its participants, updates and result
	Delete(id uint64) error

	// AddProgress appends a progress update
	AddProgress(progress *models.TaskProgress) error

	// FindProgress finds one progress update of a task
	FindProgress(taskID uint64, updateID string) (*models.TaskProgress, error)

	// DeleteProgress removes one progress update of a task
	DeleteProgress(taskID uint64, updateID string) error

	// SaveFinalResult creates or replaces the final result of a task
	SaveFinalResult(result *models.TaskFinalResult) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectIDs  []uint64
	DeveloperID *uint64
	Preload     []string
}

// MarketingTaskRepository defines the interface for marketing task data access
type MarketingTaskRepository interface {
	// Create creates a marketing task and its assignees
	Create(task *models.MarketingTask) error

	// FindByID finds a marketing task by ID including its assignees
	FindByID(id uint64) (*models.MarketingTask, error)

	// List retrieves marketing tasks with filtering
	List(filter MarketingTaskFilter) ([]models.MarketingTask, error)

	// Update updates a marketing task's own columns
	Update(task *models.MarketingTask) error

	// ReplaceAssignees sets the assignees of a marketing task
	ReplaceAssignees(taskID uint64, assignees []models.MarketingAssignee) error

	// Delete soft deletes a marketing task and removes its assignees
	Delete(id uint64) error
}

// MarketingTaskFilter holds filtering options for listing marketing tasks
type MarketingTaskFilter struct {
	ProjectID *uint64
	Assignee  *models.PrincipalRef
}

// TaskUpdateRepository defines the interface for marketing task update data access
type TaskUpdateRepository interface {
	// Create creates a task update
	Create(update *models.TaskUpdate) error

	// FindByID finds a task update with its comments
	FindByID(id uint64) (*models.TaskUpdate, error)

	// ListByTask lists the updates of a marketing task, newest first
	ListByTask(taskID uint64) ([]models.TaskUpdate, error)

	// ListByProject lists the updates of every marketing task of a project
	ListByProject(projectID uint64) ([]models.TaskUpdate, error)

	// Update updates a task update
	Update(update *models.TaskUpdate) error

	// Delete removes a task update and its comments
	Delete(id uint64) error

	// AddComment adds a comment to a task update
	AddComment(comment *models.TaskUpdateComment) error

	// FindComment finds a comment of a task update
	FindComment(updateID, commentID uint64) (*models.TaskUpdateComment, error)

	// DeleteComment removes a comment
	DeleteComment(commentID uint64) error
}

// HolidayRepository defines the interface for holiday data access
type HolidayRepository interface {
	// Create creates a holiday request
	Create(holiday *models.Holiday) error

	// FindByID finds a holiday by ID
	FindByID(id uint64) (*models.Holiday, error)

	// List retrieves holidays with filtering, newest application first
	List(filter HolidayFilter) ([]models.Holiday, error)

	// UpdateDetails updates the dates and reason of a holiday
	UpdateDetails(holiday *models.Holiday) error

	// UpdateStatus sets the status unless the current one is in notIn and
	// returns the number of rows changed
	UpdateStatus(id uint64, to models.HolidayStatus, notIn []models.HolidayStatus) (int64, error)

	// Delete soft deletes a holiday
	Delete(id uint64) error
}

// HolidayFilter holds filtering options for listing holidays
type HolidayFilter struct {
	DeveloperID *uint64
	Status      *models.HolidayStatus
}

// CalendarEventRepository defines the interface for calendar event data access
type CalendarEventRepository interface {
	// Create creates an event and its participants
	Create(event *models.CalendarEvent) error

	// FindByID finds an event by ID including its participants
	FindByID(id uint64) (*models.CalendarEvent, error)

	// FindByRelated finds the event of a type paired with an entity
	FindByRelated(eventType models.EventType, relatedID uint64) (*models.CalendarEvent, error)

	// FindByTask finds the event paired with a task
	FindByTask(taskID uint64) (*models.CalendarEvent, error)

	// List retrieves events with filtering, ordered by event date
	List(filter EventFilter) ([]models.CalendarEvent, error)

	// Update updates an event's own columns
	Update(event *models.CalendarEvent) error

	// ReplaceParticipants sets the participants of an event
	ReplaceParticipants(eventID uint64, refs []models.PrincipalRef) error

	// Delete soft deletes an event and removes its participants
	Delete(id uint64) error

	// DeleteByRelated deletes every event of the given types paired with an entity
	DeleteByRelated(types []models.EventType, relatedID uint64) error

	// DeleteByTask deletes the event paired with a task
	DeleteByTask(taskID uint64) error
}

// EventFilter holds filtering options for listing events. CreatedBy and
// Participant are combined with OR when both are set.
type EventFilter struct {
	CreatedBy   *models.PrincipalRef
	Participant *models.PrincipalRef
	EventType   *models.EventType
	Status      *models.EventStatus
	From        *time.Time
	To          *time.Time
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// CreateBatch inserts notifications
	CreateBatch(notifications []models.Notification) error

	// ListForRecipient lists the direct notifications of a principal, newest first
	ListForRecipient(ref models.PrincipalRef, params utils.PaginationParams) ([]models.Notification, int64, error)

	// ListBroadcast lists broadcast notifications, newest first
	ListBroadcast(params utils.PaginationParams) ([]models.Notification, int64, error)

	// MarkRead marks one notification read if it is visible to the principal
	MarkRead(id uint64, ref models.PrincipalRef, includeBroadcast bool) (int64, error)

	// MarkAllRead marks all notifications of a principal read
	MarkAllRead(ref models.PrincipalRef, includeBroadcast bool) error

	// CountUnread counts the unread direct notifications of a principal
	CountUnread(ref models.PrincipalRef) (int64, error)
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	// Create creates a message
	Create(message *models.Message) error

	// FindByID finds a message by ID
	FindByID(id uint64) (*models.Message, error)

	// Conversation lists the messages exchanged between two principals, oldest first
	Conversation(a, b models.PrincipalRef) ([]models.Message, error)

	// MarkRead marks a message read
	MarkRead(id uint64) error

	// CountUnread counts the unread messages received by a principal
	CountUnread(receiver models.PrincipalRef) (int64, error)
}

// RevenueRepository defines the interface for revenue data access
type RevenueRepository interface {
	// Create creates a revenue entry
	Create(revenue *models.Revenue) error

	// FindByID finds a revenue entry by ID
	FindByID(id uint64) (*models.Revenue, error)

	// List lists revenue entries, optionally for one project, newest first
	List(projectID *uint64) ([]models.Revenue, error)

	// Update updates a revenue entry
	Update(revenue *models.Revenue) error

	// Delete soft deletes a revenue entry
	Delete(id uint64) error
}

// Repositories groups every repository bound to the same connection or transaction.
type Repositories struct {
	db *gorm.DB

	Principals     PrincipalRepository
	Projects       ProjectRepository
	Tasks          TaskRepository
	MarketingTasks MarketingTaskRepository
	TaskUpdates    TaskUpdateRepository
	Holidays       HolidayRepository
	Events         CalendarEventRepository
	Notifications  NotificationRepository
	Messages       MessageRepository
	Revenues       RevenueRepository
}

// New creates the repositories for db
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:             db,
		Principals:     NewPrincipalRepository(db),
		Projects:       NewProjectRepository(db),
		Tasks:          NewTaskRepository(db),
		MarketingTasks: NewMarketingTaskRepository(db),
		TaskUpdates:    NewTaskUpdateRepository(db),
		Holidays:       NewHolidayRepository(db),
		Events:         NewCalendarEventRepository(db),
		Notifications:  NewNotificationRepository(db),
		Messages:       NewMessageRepository(db),
		Revenues:       NewRevenueRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single database transaction.
func (r *Repositories) Transaction(fn func(tx *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
