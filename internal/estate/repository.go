package estate

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(estate *Estate) error
	FindByID(id uint) (*Estate, error)
	FindByCode(code string) (*Estate, error)
	FindByEmail(email string) (*Estate, error)
	Update(estate *Estate) error
	List(approved *bool) ([]Estate, error)
	Delete(id uint) error

	CreateStreet(street *EstateStreet) error
	ListStreets(estateID uint) ([]EstateStreet, error)
	FindStreet(estateID, streetID uint) (*EstateStreet, error)
	DeleteStreet(estateID, streetID uint) error

	CreateChangeRequest(req *ChangeRequest) error
	ListChangeRequests(estateID *uint, status string) ([]ChangeRequest, error)
	ResolveChangeRequest(id uint) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(estate *Estate) error {
	return r.db.Create(estate).Error
}

func (r *gormRepository) FindByID(id uint) (*Estate, error) {
	var e Estate
	if err := r.db.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *gormRepository) FindByCode(code string) (*Estate, error) {
	var e Estate
	if err := r.db.Where("estate_code = ?", code).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *gormRepository) FindByEmail(email string) (*Estate, error) {
	var e Estate
	if err := r.db.Where("email = ?", email).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *gormRepository) Update(estate *Estate) error {
	return r.db.Save(estate).Error
}

func (r *gormRepository) List(approved *bool) ([]Estate, error) {
	var estates []Estate
	query := r.db.Order("created_at DESC")
	if approved != nil {
		query = query.Where("approved = ?", *approved)
	}
	if err := query.Find(&estates).Error; err != nil {
		return nil, err
	}
	return estates, nil
}

func (r *gormRepository) Delete(id uint) error {
	return r.db.Delete(&Estate{}, id).Error
}

func (r *gormRepository) CreateStreet(street *EstateStreet) error {
	return r.db.Create(street).Error
}

func (r *gormRepository) ListStreets(estateID uint) ([]EstateStreet, error) {
	var streets []EstateStreet
	if err := r.db.Where("estate_id = ?", estateID).Order("name ASC").Find(&streets).Error; err != nil {
		return nil, err
	}
	return streets, nil
}

func (r *gormRepository) FindStreet(estateID, streetID uint) (*EstateStreet, error) {
	var s EstateStreet
	if err := r.db.Where("estate_id = ? AND id = ?", estateID, streetID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) DeleteStreet(estateID, streetID uint) error {
	return r.db.Where("estate_id = ? AND id = ?", estateID, streetID).Delete(&EstateStreet{}).Error
}

func (r *gormRepository) CreateChangeRequest(req *ChangeRequest) error {
	return r.db.Create(req).Error
}

func (r *gormRepository) ListChangeRequests(estateID *uint, status string) ([]ChangeRequest, error) {
	var reqs []ChangeRequest
	query := r.db.Order("created_at DESC")
	if estateID != nil {
		query = query.Where("estate_id = ?", *estateID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// ResolveChangeRequest flips a pending request to resolved. The status guard
// makes a second resolve a no-op reported via the affected-row count.
func (r *gormRepository) ResolveChangeRequest(id uint) (int64, error) {
	res := r.db.Model(&ChangeRequest{}).
		Where("id = ? AND status = ?", id, "pending").
		Update("status", "resolved")
	return res.RowsAffected, res.Error
}
