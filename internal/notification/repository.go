package notification

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(n *Notification) error
	ListForResident(residentUserID string, limit int) ([]Notification, error)
	MarkRead(residentUserID string, id uint) (int64, error)
	CountUnread(residentUserID string) (int64, error)

	SaveDeviceToken(t *DeviceToken) error
	ListDeviceTokens(residentUserID string) ([]DeviceToken, error)
	DeleteDeviceToken(token string) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(n *Notification) error {
	return r.db.Create(n).Error
}

func (r *gormRepository) ListForResident(residentUserID string, limit int) ([]Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	var notifs []Notification
	err := r.db.Where("resident_user_id = ?", residentUserID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifs).Error
	return notifs, err
}

func (r *gormRepository) MarkRead(residentUserID string, id uint) (int64, error) {
	res := r.db.Model(&Notification{}).
		Where("id = ? AND resident_user_id = ? AND read = ?", id, residentUserID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (r *gormRepository) CountUnread(residentUserID string) (int64, error) {
	var count int64
	err := r.db.Model(&Notification{}).
		Where("resident_user_id = ? AND read = ?", residentUserID, false).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) SaveDeviceToken(t *DeviceToken) error {
	// re-registering the same token moves it to the new resident
	r.db.Where("token = ?", t.Token).Delete(&DeviceToken{})
	return r.db.Create(t).Error
}

func (r *gormRepository) ListDeviceTokens(residentUserID string) ([]DeviceToken, error) {
	var tokens []DeviceToken
	err := r.db.Where("resident_user_id = ?", residentUserID).Find(&tokens).Error
	return tokens, err
}

func (r *gormRepository) DeleteDeviceToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&DeviceToken{}).Error
}
