package repository

import (
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormHolidayRepository is a GORM implementation of HolidayRepository
type GormHolidayRepository struct {
	db *gorm.DB
}

// NewHolidayRepository creates a new HolidayRepository
func NewHolidayRepository(db *gorm.DB) HolidayRepository {
	return &GormHolidayRepository{db: db}
}

func (r *GormHolidayRepository) Create(holiday *models.Holiday) error {
	return r.db.Omit(clause.Associations).Create(holiday).Error
}

func (r *GormHolidayRepository) FindByID(id uint64) (*models.Holiday, error) {
	var holiday models.Holiday
	if err := r.db.First(&holiday, id).Error; err != nil {
		return nil, err
	}
	return &holiday, nil
}

func (r *GormHolidayRepository) List(filter HolidayFilter) ([]models.Holiday, error) {
	var holidays []models.Holiday

	query := r.db.Model(&models.Holiday{})
	if filter.DeveloperID != nil {
		query = query.Where("developer_id = ?", *filter.DeveloperID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Order("applied_on DESC").Order("id DESC").Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

// UpdateDetails writes the dates and reason only. Status moves through
// UpdateStatus.
func (r *GormHolidayRepository) UpdateDetails(holiday *models.Holiday) error {
	return r.db.Model(holiday).Select("start_date", "end_date", "reason").Updates(holiday).Error
}

func (r *GormHolidayRepository) UpdateStatus(id uint64, to models.HolidayStatus, notIn []models.HolidayStatus) (int64, error) {
	query := r.db.Model(&models.Holiday{}).Where("id = ?", id)
	if len(notIn) > 0 {
		query = query.Where("status NOT IN ?", notIn)
	}
	result := query.Update("status", to)
	return result.RowsAffected, result.Error
}

func (r *GormHolidayRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Holiday{}, id).Error
}
