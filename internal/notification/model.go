package notification

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is an in-app notification for a resident, fed by gate events.
type Notification struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Resident user ID (USR-XXXXX) the notification is addressed to
	ResidentUserID string `gorm:"size:10;not null;index" json:"resident_user_id"`
	EstateCode     string `gorm:"size:6;index" json:"estate_id"`

	Type  string         `gorm:"size:30;not null" json:"type"`
	Title string         `gorm:"size:150;not null" json:"title"`
	Body  string         `gorm:"type:text" json:"body"`
	Data  datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`

	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// DeviceToken is a resident's registered FCM push target.
type DeviceToken struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ResidentUserID string `gorm:"size:10;not null;index" json:"resident_user_id"`
	Token          string `gorm:"size:255;uniqueIndex;not null" json:"token"`
	Platform       string `gorm:"size:10" json:"platform"` // android | ios | web

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DeviceToken) TableName() string {
	return "device_tokens"
}
