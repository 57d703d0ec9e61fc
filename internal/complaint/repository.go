package complaint

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(c *Complaint) error
	FindByID(id uint) (*Complaint, error)
	Update(c *Complaint) error
	ListByResident(residentID uint) ([]Complaint, error)
	ListByEstate(estateID uint, status string) ([]Complaint, error)
	CountOpenByEstate(estateID uint) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(c *Complaint) error {
	return r.db.Create(c).Error
}

func (r *gormRepository) FindByID(id uint) (*Complaint, error) {
	var c Complaint
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) Update(c *Complaint) error {
	return r.db.Save(c).Error
}

func (r *gormRepository) ListByResident(residentID uint) ([]Complaint, error) {
	var complaints []Complaint
	err := r.db.Where("resident_id = ?", residentID).Order("created_at DESC").Find(&complaints).Error
	return complaints, err
}

func (r *gormRepository) ListByEstate(estateID uint, status string) ([]Complaint, error) {
	query := r.db.Where("estate_id = ?", estateID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var complaints []Complaint
	err := query.Order("created_at DESC").Find(&complaints).Error
	return complaints, err
}

func (r *gormRepository) CountOpenByEstate(estateID uint) (int64, error) {
	var count int64
	err := r.db.Model(&Complaint{}).Where("estate_id = ? AND status != ?", estateID, "resolved").Count(&count).Error
	return count, err
}
