package repository

import (
	"github.com/yukikurage/project-hub-api/internal/database"
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPrincipalRepository is a GORM implementation of PrincipalRepository
type GormPrincipalRepository struct {
	db *gorm.DB
}

// NewPrincipalRepository creates a new PrincipalRepository
func NewPrincipalRepository(db *gorm.DB) PrincipalRepository {
	return &GormPrincipalRepository{db: db}
}

func (r *GormPrincipalRepository) Create(p *models.Principal) error {
	return r.db.Omit(clause.Associations).Create(p).Error
}

func (r *GormPrincipalRepository) FindByID(kind models.PrincipalKind, id uint64) (*models.Principal, error) {
	var p models.Principal
	if err := r.db.Where("kind = ?", kind).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPrincipalRepository) FindByEmail(kind models.PrincipalKind, email string) (*models.Principal, error) {
	var p models.Principal
	if err := r.db.Where("kind = ? AND email = ?", kind, email).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPrincipalRepository) List(kind models.PrincipalKind) ([]models.Principal, error) {
	var principals []models.Principal
	if err := r.db.Where("kind = ?", kind).Scopes(database.Newest("")).Find(&principals).Error; err != nil {
		return nil, err
	}
	return principals, nil
}

// FindByRefs loads every principal addressed by refs. Refs to missing
// principals and system refs are ignored.
func (r *GormPrincipalRepository) FindByRefs(refs []models.PrincipalRef) ([]models.Principal, error) {
	byKind := make(map[models.PrincipalKind][]uint64)
	for _, ref := range refs {
		if ref.IsSystem() {
			continue
		}
		byKind[ref.Kind] = append(byKind[ref.Kind], ref.ID)
	}

	var principals []models.Principal
	for kind, ids := range byKind {
		var found []models.Principal
		if err := r.db.Where("kind = ? AND id IN ?", kind, ids).Find(&found).Error; err != nil {
			return nil, err
		}
		principals = append(principals, found...)
	}
	return principals, nil
}

func (r *GormPrincipalRepository) CountByIDs(kind models.PrincipalKind, ids []uint64) (int64, error) {
	var count int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := r.db.Model(&models.Principal{}).
		Where("kind = ? AND id IN ?", kind, ids).
		Count(&count).Error
	return count, err
}

func (r *GormPrincipalRepository) Update(p *models.Principal) error {
	return r.db.Omit(clause.Associations).Save(p).Error
}

func (r *GormPrincipalRepository) Delete(kind models.PrincipalKind, id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("manager_id = ? OR (member_kind = ? AND member_id = ?)", id, kind, id).
			Delete(&models.ManagerMember{}).Error; err != nil {
			return err
		}

		if kind == models.KindClient {
			if err := tx.Where("client_id = ?", id).Delete(&models.ClientProject{}).Error; err != nil {
				return err
			}
		}

		if kind == models.KindDeveloper {
			if err := tx.Where("developer_id = ?", id).Delete(&models.ProjectAssignment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("developer_id = ?", id).Delete(&models.TaskParticipant{}).Error; err != nil {
				return err
			}
		}

		result := tx.Where("kind = ?", kind).Delete(&models.Principal{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormPrincipalRepository) AddMembers(managerID uint64, members []models.ManagerMember) error {
	if len(members) == 0 {
		return nil
	}
	for i := range members {
		members[i].ManagerID = managerID
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&members).Error
}

func (r *GormPrincipalRepository) ListMembers(managerID uint64, kinds ...models.PrincipalKind) ([]models.ManagerMember, error) {
	var members []models.ManagerMember
	query := r.db.Where("manager_id = ?", managerID)
	if len(kinds) > 0 {
		query = query.Where("member_kind IN ?", kinds)
	}
	if err := query.Order("assigned_at ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *GormPrincipalRepository) ManagersOf(memberKind models.PrincipalKind, memberIDs []uint64) ([]models.Principal, error) {
	var managers []models.Principal
	if len(memberIDs) == 0 {
		return managers, nil
	}

	owners := r.db.Model(&models.ManagerMember{}).
		Select("manager_id").
		Where("member_kind = ? AND member_id IN ?", memberKind, memberIDs)

	if err := r.db.Where("kind = ? AND id IN (?)", models.KindManager, owners).
		Order("id ASC").
		Find(&managers).Error; err != nil {
		return nil, err
	}
	return managers, nil
}

func (r *GormPrincipalRepository) SetClientProjects(clientID uint64, projectIDs []uint64) error {
	if err := r.db.Where("client_id = ?", clientID).Delete(&models.ClientProject{}).Error; err != nil {
		return err
	}

	ids := uniqueIDs(projectIDs)
	if len(ids) == 0 {
		return nil
	}

	links := make([]models.ClientProject, len(ids))
	for i, id := range ids {
		links[i] = models.ClientProject{ClientID: clientID, ProjectID: id}
	}
	return r.db.Create(&links).Error
}

func (r *GormPrincipalRepository) ClientProjectIDs(clientID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.ClientProject{}).
		Where("client_id = ?", clientID).
		Pluck("project_id", &ids).Error
	return ids, err
}
