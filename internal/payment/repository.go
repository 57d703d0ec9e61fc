package payment

import (
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateLevy(levy *Levy) error
	FindLevyByID(id uint) (*Levy, error)
	ListLevies(estateID uint) ([]Levy, error)

	CreatePayment(p *Payment) error
	FindPaymentByReference(ref string) (*Payment, error)
	FindPaymentByOrderID(orderID string) (*Payment, error)
	ListPaymentsByResident(residentID uint) ([]Payment, error)
	ListPaymentsByEstate(estateID uint, status string) ([]Payment, error)
	// MarkPaidIfPending settles a pending payment exactly once.
	MarkPaidIfPending(id uint, razorpayPaymentID string, paidAt time.Time) (int64, error)
	MarkFailedIfPending(id uint) (int64, error)
	HasPaidPayment(residentID, levyID uint) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateLevy(levy *Levy) error {
	return r.db.Create(levy).Error
}

func (r *gormRepository) FindLevyByID(id uint) (*Levy, error) {
	var l Levy
	if err := r.db.First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *gormRepository) ListLevies(estateID uint) ([]Levy, error) {
	var levies []Levy
	err := r.db.Where("estate_id = ?", estateID).Order("created_at DESC").Find(&levies).Error
	return levies, err
}

func (r *gormRepository) CreatePayment(p *Payment) error {
	return r.db.Create(p).Error
}

func (r *gormRepository) FindPaymentByReference(ref string) (*Payment, error) {
	var p Payment
	if err := r.db.Where("reference = ?", ref).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) FindPaymentByOrderID(orderID string) (*Payment, error) {
	var p Payment
	if err := r.db.Where("razorpay_order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) ListPaymentsByResident(residentID uint) ([]Payment, error) {
	var payments []Payment
	err := r.db.Where("resident_id = ?", residentID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *gormRepository) ListPaymentsByEstate(estateID uint, status string) ([]Payment, error) {
	query := r.db.Where("estate_id = ?", estateID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var payments []Payment
	err := query.Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *gormRepository) MarkPaidIfPending(id uint, razorpayPaymentID string, paidAt time.Time) (int64, error) {
	res := r.db.Model(&Payment{}).
		Where("id = ? AND status = ?", id, "pending").
		Updates(map[string]interface{}{
			"status":              "paid",
			"razorpay_payment_id": razorpayPaymentID,
			"paid_at":             paidAt,
		})
	return res.RowsAffected, res.Error
}

func (r *gormRepository) MarkFailedIfPending(id uint) (int64, error) {
	res := r.db.Model(&Payment{}).
		Where("id = ? AND status = ?", id, "pending").
		Update("status", "failed")
	return res.RowsAffected, res.Error
}

func (r *gormRepository) HasPaidPayment(residentID, levyID uint) (bool, error) {
	var count int64
	err := r.db.Model(&Payment{}).
		Where("resident_id = ? AND levy_id = ? AND status = ?", residentID, levyID, "paid").
		Count(&count).Error
	return count > 0, err
}
