package complaint

import (
	"time"
)

// Complaint is a resident-raised issue handled by the estate office.
type Complaint struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EstateID   uint   `gorm:"not null;index" json:"estate_db_id"`
	EstateCode string `gorm:"size:6;not null" json:"estate_id"`

	ResidentID   uint   `gorm:"not null;index" json:"resident_id"`
	ResidentName string `gorm:"size:100" json:"resident_name"`

	Category string `gorm:"size:50" json:"category"` // security | maintenance | noise | other
	Subject  string `gorm:"size:150;not null" json:"subject"`
	Details  string `gorm:"type:text;not null" json:"details"`

	Status   string `gorm:"size:20;default:'open';index" json:"status"` // open | in_progress | resolved
	Response string `gorm:"type:text" json:"response,omitempty"`

	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Complaint) TableName() string {
	return "complaints"
}

// validStatusTransitions guards the complaint lifecycle.
var validStatusTransitions = map[string][]string{
	"open":        {"in_progress", "resolved"},
	"in_progress": {"resolved"},
	"resolved":    {},
}

func canTransition(from, to string) bool {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
