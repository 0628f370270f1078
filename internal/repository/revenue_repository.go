package repository

import (
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRevenueRepository is a GORM implementation of RevenueRepository
type GormRevenueRepository struct {
	db *gorm.DB
}

// NewRevenueRepository creates a new RevenueRepository
func NewRevenueRepository(db *gorm.DB) RevenueRepository {
	return &GormRevenueRepository{db: db}
}

func (r *GormRevenueRepository) Create(revenue *models.Revenue) error {
	return r.db.Omit(clause.Associations).Create(revenue).Error
}

func (r *GormRevenueRepository) FindByID(id uint64) (*models.Revenue, error) {
	var revenue models.Revenue
	if err := r.db.Preload("Project").First(&revenue, id).Error; err != nil {
		return nil, err
	}
	return &revenue, nil
}

func (r *GormRevenueRepository) List(projectID *uint64) ([]models.Revenue, error) {
	var revenues []models.Revenue

	query := r.db.Preload("Project")
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	if err := query.Order("date DESC").Order("id DESC").Find(&revenues).Error; err != nil {
		return nil, err
	}
	return revenues, nil
}

func (r *GormRevenueRepository) Update(revenue *models.Revenue) error {
	return r.db.Omit(clause.Associations).Save(revenue).Error
}

func (r *GormRevenueRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Revenue{}, id).Error
}
