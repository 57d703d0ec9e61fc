package resident

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(resident *Resident) error
	FindByID(id uint) (*Resident, error)
	FindByUserID(userID string) (*Resident, error)
	FindByGatePass(code string) (*Resident, error)
	Update(resident *Resident) error
	ListByEstate(estateID uint, filter ListFilter) ([]Resident, int64, error)
	ListAllByEstate(estateID uint) ([]Resident, error)
	CountByEstate(estateID uint) (total, verified int64, err error)

	// ApproveIfUnverified flips verified on in a single guarded update and
	// reports whether a row actually changed.
	ApproveIfUnverified(id uint, gatePassCode string) (int64, error)
	// DeactivateIfActive clears the pass and marks the resident moved out.
	DeactivateIfActive(id uint) (int64, error)
}

type ListFilter struct {
	Search   string
	Verified *bool
	Active   *bool
	Page     int
	Limit    int
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(resident *Resident) error {
	return r.db.Create(resident).Error
}

func (r *gormRepository) FindByID(id uint) (*Resident, error) {
	var res Resident
	if err := r.db.First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *gormRepository) FindByUserID(userID string) (*Resident, error) {
	var res Resident
	if err := r.db.Where("user_id = ?", userID).First(&res).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *gormRepository) FindByGatePass(code string) (*Resident, error) {
	var res Resident
	if err := r.db.Where("gate_pass_code = ?", code).First(&res).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *gormRepository) Update(resident *Resident) error {
	return r.db.Save(resident).Error
}

func (r *gormRepository) ListByEstate(estateID uint, filter ListFilter) ([]Resident, int64, error) {
	query := r.db.Model(&Resident{}).Where("estate_id = ?", estateID)

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("full_name ILIKE ? OR user_id ILIKE ? OR phone LIKE ?", like, like, like)
	}
	if filter.Verified != nil {
		query = query.Where("verified = ?", *filter.Verified)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var residents []Resident
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&residents).Error
	return residents, total, err
}

func (r *gormRepository) ListAllByEstate(estateID uint) ([]Resident, error) {
	var residents []Resident
	err := r.db.Where("estate_id = ?", estateID).Order("created_at ASC").Find(&residents).Error
	return residents, err
}

func (r *gormRepository) CountByEstate(estateID uint) (int64, int64, error) {
	var total, verified int64
	if err := r.db.Model(&Resident{}).Where("estate_id = ?", estateID).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.Model(&Resident{}).Where("estate_id = ? AND verified = ?", estateID, true).Count(&verified).Error; err != nil {
		return 0, 0, err
	}
	return total, verified, nil
}

func (r *gormRepository) ApproveIfUnverified(id uint, gatePassCode string) (int64, error) {
	res := r.db.Model(&Resident{}).
		Where("id = ? AND verified = ?", id, false).
		Updates(map[string]interface{}{
			"verified":       true,
			"active":         true,
			"gate_pass_code": gatePassCode,
		})
	return res.RowsAffected, res.Error
}

func (r *gormRepository) DeactivateIfActive(id uint) (int64, error) {
	res := r.db.Model(&Resident{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]interface{}{
			"active":         false,
			"verified":       false,
			"gate_pass_code": "",
		})
	return res.RowsAffected, res.Error
}
