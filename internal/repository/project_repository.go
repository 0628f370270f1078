package repository

import (
	"github.com/yukikurage/project-hub-api/internal/database"
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a project and its developer assignments
func (r *GormProjectRepository) Create(project *models.Project, developerIDs []uint64) error {
	if err := r.db.Omit(clause.Associations).Create(project).Error; err != nil {
		return err
	}
	return r.ReplaceAssignments(project.ID, developerIDs)
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db.Preload("Assignments")

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves projects with filtering and pagination
func (r *GormProjectRepository) List(filter ProjectFilter) ([]models.Project, int64, error) {
	var projects []models.Project

	query := r.db.Model(&models.Project{})

	if filter.Status != nil {
		query = query.Where("projects.status = ?", *filter.Status)
	}
	if filter.IDs != nil {
		if len(filter.IDs) == 0 {
			return []models.Project{}, 0, nil
		}
		query = query.Where("projects.id IN ?", filter.IDs)
	}
	if filter.DeveloperID != nil {
		assignmentSubQuery := r.db.Model(&models.ProjectAssignment{}).
			Select("1").
			Where("project_assignments.project_id = projects.id").
			Where("project_assignments.developer_id = ?", *filter.DeveloperID)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Scopes(database.Newest("projects"))
	if filter.Pagination != nil {
		listQuery = listQuery.Scopes(database.Paginate(*filter.Pagination))
	}

	if err := listQuery.Preload("Assignments").Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update updates a project's own columns
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit(clause.Associations).Save(project).Error
}

// ReplaceAssignments sets the assigned developers of a project
func (r *GormProjectRepository) ReplaceAssignments(projectID uint64, developerIDs []uint64) error {
	if err := r.db.Where("project_id = ?", projectID).Delete(&models.ProjectAssignment{}).Error; err != nil {
		return err
	}

	ids := uniqueIDs(developerIDs)
	if len(ids) == 0 {
		return nil
	}

	assignments := make([]models.ProjectAssignment, len(ids))
	for i, id := range ids {
		assignments[i] = models.ProjectAssignment{ProjectID: projectID, DeveloperID: id}
	}
	return r.db.Omit(clause.Associations).Create(&assignments).Error
}

// IsAssigned reports whether a developer is assigned to a project
func (r *GormProjectRepository) IsAssigned(projectID, developerID uint64) (bool, error) {
	count, err := r.CountAssigned(projectID, []uint64{developerID})
	return count > 0, err
}

// CountAssigned counts how many of the developers are assigned to a project
func (r *GormProjectRepository) CountAssigned(projectID uint64, developerIDs []uint64) (int64, error) {
	var count int64
	ids := uniqueIDs(developerIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	err := r.db.Model(&models.ProjectAssignment{}).
		Where("project_id = ? AND developer_id IN ?", projectID, ids).
		Count(&count).Error
	return count, err
}

// Delete soft deletes a project and removes its assignments
func (r *GormProjectRepository) Delete(id uint64) error {
	if err := r.db.Where("project_id = ?", id).Delete(&models.ProjectAssignment{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("project_id = ?", id).Delete(&models.ClientProject{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Project{}, id).Error
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
