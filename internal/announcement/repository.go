package announcement

import (
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateAnnouncement(a *Announcement) error
	ListAnnouncements(estateID uint, includeVerifiedOnly bool) ([]Announcement, error)
	DeleteAnnouncement(estateID, id uint) (int64, error)

	CreateMessage(m *PrivateMessage) error
	ListMessages(residentID uint) ([]PrivateMessage, error)
	MarkMessageRead(residentID, id uint, at time.Time) (int64, error)
	CountUnread(residentID uint) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateAnnouncement(a *Announcement) error {
	return r.db.Create(a).Error
}

func (r *gormRepository) ListAnnouncements(estateID uint, includeVerifiedOnly bool) ([]Announcement, error) {
	query := r.db.Where("estate_id = ?", estateID)
	if !includeVerifiedOnly {
		query = query.Where("audience = ?", "all")
	}
	var anns []Announcement
	err := query.Order("created_at DESC").Limit(100).Find(&anns).Error
	return anns, err
}

func (r *gormRepository) DeleteAnnouncement(estateID, id uint) (int64, error) {
	res := r.db.Where("estate_id = ?", estateID).Delete(&Announcement{}, id)
	return res.RowsAffected, res.Error
}

func (r *gormRepository) CreateMessage(m *PrivateMessage) error {
	return r.db.Create(m).Error
}

func (r *gormRepository) ListMessages(residentID uint) ([]PrivateMessage, error) {
	var msgs []PrivateMessage
	err := r.db.Where("resident_id = ?", residentID).Order("created_at DESC").Find(&msgs).Error
	return msgs, err
}

func (r *gormRepository) MarkMessageRead(residentID, id uint, at time.Time) (int64, error) {
	res := r.db.Model(&PrivateMessage{}).
		Where("id = ? AND resident_id = ? AND read = ?", id, residentID, false).
		Updates(map[string]interface{}{"read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *gormRepository) CountUnread(residentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&PrivateMessage{}).
		Where("resident_id = ? AND read = ?", residentID, false).
		Count(&count).Error
	return count, err
}
