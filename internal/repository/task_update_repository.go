package repository

import (
	"github.com/yukikurage/project-hub-api/internal/database"
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskUpdateRepository is a GORM implementation of TaskUpdateRepository
type GormTaskUpdateRepository struct {
	db *gorm.DB
}

// NewTaskUpdateRepository creates a new TaskUpdateRepository
func NewTaskUpdateRepository(db *gorm.DB) TaskUpdateRepository {
	return &GormTaskUpdateRepository{db: db}
}

func (r *GormTaskUpdateRepository) Create(update *models.TaskUpdate) error {
	return r.db.Omit(clause.Associations).Create(update).Error
}

func (r *GormTaskUpdateRepository) FindByID(id uint64) (*models.TaskUpdate, error) {
	var update models.TaskUpdate
	if err := r.db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&update, id).Error; err != nil {
		return nil, err
	}
	return &update, nil
}

func (r *GormTaskUpdateRepository) ListByTask(taskID uint64) ([]models.TaskUpdate, error) {
	var updates []models.TaskUpdate
	if err := r.db.Preload("Comments").
		Where("marketing_task_id = ?", taskID).
		Scopes(database.Newest("task_updates")).
		Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *GormTaskUpdateRepository) ListByProject(projectID uint64) ([]models.TaskUpdate, error) {
	var updates []models.TaskUpdate

	taskIDs := r.db.Model(&models.MarketingTask{}).
		Select("id").
		Where("project_id = ?", projectID)

	if err := r.db.Preload("Comments").
		Preload("MarketingTask").
		Where("marketing_task_id IN (?)", taskIDs).
		Scopes(database.Newest("task_updates")).
		Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *GormTaskUpdateRepository) Update(update *models.TaskUpdate) error {
	return r.db.Omit(clause.Associations).Save(update).Error
}

func (r *GormTaskUpdateRepository) Delete(id uint64) error {
	if err := r.db.Where("task_update_id = ?", id).Delete(&models.TaskUpdateComment{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.TaskUpdate{}, id).Error
}

func (r *GormTaskUpdateRepository) AddComment(comment *models.TaskUpdateComment) error {
	return r.db.Create(comment).Error
}

func (r *GormTaskUpdateRepository) FindComment(updateID, commentID uint64) (*models.TaskUpdateComment, error) {
	var comment models.TaskUpdateComment
	if err := r.db.Where("task_update_id = ?", updateID).First(&comment, commentID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *GormTaskUpdateRepository) DeleteComment(commentID uint64) error {
	return r.db.Delete(&models.TaskUpdateComment{}, commentID).Error
}
