package announcement

import (
	"time"
)

// Announcement is an estate-wide notice published by the office.
type Announcement struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EstateID   uint   `gorm:"not null;index" json:"estate_db_id"`
	EstateCode string `gorm:"size:6;not null" json:"estate_id"`

	Title string `gorm:"size:150;not null" json:"title"`
	Body  string `gorm:"type:text;not null" json:"body"`

	// all | verified
	Audience string `gorm:"size:10;default:'all'" json:"audience"`

	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Announcement) TableName() string {
	return "announcements"
}

// PrivateMessage is a direct note from the estate office to one resident.
type PrivateMessage struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EstateID   uint `gorm:"not null;index" json:"estate_db_id"`
	ResidentID uint `gorm:"not null;index" json:"resident_id"`

	Subject string `gorm:"size:150;not null" json:"subject"`
	Body    string `gorm:"type:text;not null" json:"body"`

	Read   bool       `gorm:"default:false" json:"read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PrivateMessage) TableName() string {
	return "private_messages"
}
