package repository

import (
	"github.com/yukikurage/project-hub-api/internal/database"
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMarketingTaskRepository is a GORM implementation of MarketingTaskRepository
type GormMarketingTaskRepository struct {
	db *gorm.DB
}

// NewMarketingTaskRepository creates a new MarketingTaskRepository
func NewMarketingTaskRepository(db *gorm.DB) MarketingTaskRepository {
	return &GormMarketingTaskRepository{db: db}
}

func (r *GormMarketingTaskRepository) Create(task *models.MarketingTask) error {
	assignees := task.Assignees
	if err := r.db.Omit(clause.Associations).Create(task).Error; err != nil {
		return err
	}
	return r.ReplaceAssignees(task.ID, assignees)
}

func (r *GormMarketingTaskRepository) FindByID(id uint64) (*models.MarketingTask, error) {
	var task models.MarketingTask
	if err := r.db.Preload("Assignees").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormMarketingTaskRepository) List(filter MarketingTaskFilter) ([]models.MarketingTask, error) {
	var tasks []models.MarketingTask

	query := r.db.Model(&models.MarketingTask{}).Preload("Assignees")

	if filter.ProjectID != nil {
		query = query.Where("marketing_tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Assignee != nil {
		assigneeSubQuery := r.db.Model(&models.MarketingAssignee{}).
			Select("1").
			Where("marketing_assignees.marketing_task_id = marketing_tasks.id").
			Where("marketing_assignees.assignee_kind = ? AND marketing_assignees.assignee_id = ?",
				filter.Assignee.Kind, filter.Assignee.ID)
		query = query.Where("EXISTS (?)", assigneeSubQuery)
	}

	if err := query.Scopes(database.Newest("marketing_tasks")).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormMarketingTaskRepository) Update(task *models.MarketingTask) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

func (r *GormMarketingTaskRepository) ReplaceAssignees(taskID uint64, assignees []models.MarketingAssignee) error {
	if err := r.db.Where("marketing_task_id = ?", taskID).Delete(&models.MarketingAssignee{}).Error; err != nil {
		return err
	}

	seen := make(map[models.PrincipalRef]struct{}, len(assignees))
	rows := make([]models.MarketingAssignee, 0, len(assignees))
	for _, a := range assignees {
		if _, ok := seen[a.Ref()]; ok {
			continue
		}
		seen[a.Ref()] = struct{}{}
		a.MarketingTaskID = taskID
		rows = append(rows, a)
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.Create(&rows).Error
}

func (r *GormMarketingTaskRepository) Delete(id uint64) error {
	if err := r.db.Where("marketing_task_id = ?", id).Delete(&models.MarketingAssignee{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.MarketingTask{}, id).Error
}
