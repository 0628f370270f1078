package repository

import (
	"github.com/yukikurage/project-hub-api/internal/database"
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a task and its participants
func (r *GormTaskRepository) Create(task *models.Task, developerIDs []uint64) error {
	if err := r.db.Omit(clause.Associations).Create(task).Error; err != nil {
		return err
	}
	return r.ReplaceParticipants(task.ID, developerIDs)
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.Preload("Participants")

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Preload("Participants")

	if filter.ProjectIDs != nil {
		if len(filter.ProjectIDs) == 0 {
			return []models.Task{}, nil
		}
		query = query.Where("tasks.project_id IN ?", filter.ProjectIDs)
	}
	if filter.DeveloperID != nil {
		participantSubQuery := r.db.Model(&models.TaskParticipant{}).
			Select("1").
			Where("task_participants.task_id = tasks.id").
			Where("task_participants.developer_id = ?", *filter.DeveloperID)
		query = query.Where("EXISTS (?)", participantSubQuery)
	}
	for _, p := range filter.Preload {
		query = query.Preload(p)
	}

	if err := query.Scopes(database.Newest("tasks")).Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update updates a task's own columns
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// ReplaceParticipants sets the participants of a task
func (r *GormTaskRepository) ReplaceParticipants(taskID uint64, developerIDs []uint64) error {
	if err := r.db.Where("task_id = ?", taskID).Delete(&models.TaskParticipant{}).Error; err != nil {
		return err
	}

	ids := uniqueIDs(developerIDs)
	if len(ids) == 0 {
		return nil
	}

	participants := make([]models.TaskParticipant, len(ids))
	for i, id := range ids {
		participants[i] = models.TaskParticipant{TaskID: taskID, DeveloperID: id}
	}
	return r.db.Omit(clause.Associations).Create(&participants).Error
}

// Delete soft deletes a task and removes its participants, updates and result
func (r *GormTaskRepository) Delete(id uint64) error {
	if err := r.db.Where("task_id = ?", id).Delete(&models.TaskParticipant{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("task_id = ?", id).Delete(&models.TaskProgress{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("task_id = ?", id).Delete(&models.TaskFinalResult{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Task{}, id).Error
}

// AddProgress appends a progress update
func (r *GormTaskRepository) AddProgress(progress *models.TaskProgress) error {
	return r.db.Create(progress).Error
}

// FindProgress finds one progress update of a task
func (r *GormTaskRepository) FindProgress(taskID uint64, updateID string) (*models.TaskProgress, error) {
	var progress models.TaskProgress
	if err := r.db.Where("task_id = ? AND update_id = ?", taskID, updateID).
		First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// DeleteProgress removes one progress update of a task
func (r *GormTaskRepository) DeleteProgress(taskID uint64, updateID string) error {
	return r.db.Where("task_id = ? AND update_id = ?", taskID, updateID).
		Delete(&models.TaskProgress{}).Error
}

// SaveFinalResult creates or replaces the final result of a task
func (r *GormTaskRepository) SaveFinalResult(result *models.TaskFinalResult) error {
	return r.db.Save(result).Error
}
