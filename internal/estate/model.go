package estate

import (
	"time"
)

// Estate represents a managed residential community, the top-level scope for
// residents, passes and pins.
type Estate struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// 6-char public code residents and visitors use to address the estate
	EstateCode string `gorm:"column:estate_code;size:6;uniqueIndex;not null" json:"estate_id"`
	Name       string `gorm:"size:150;not null" json:"name"`
	Address    string `gorm:"size:255;not null" json:"address"`

	AdminName string `gorm:"size:100;not null" json:"admin_name"`
	Phone     string `gorm:"size:20;not null" json:"phone"`
	Email     string `gorm:"size:100;uniqueIndex;not null" json:"email"`

	// Approval is toggled only by the super admin
	Approved        bool       `gorm:"default:false" json:"approved"`
	ApprovedAt      *time.Time `json:"approved_at"`
	RejectedAt      *time.Time `json:"rejected_at"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`

	// Optional bank details for levy collection
	BankName      string `gorm:"size:100" json:"bank_name,omitempty"`
	AccountNumber string `gorm:"size:30" json:"account_number,omitempty"`
	AccountName   string `gorm:"size:100" json:"account_name,omitempty"`

	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Estate) TableName() string {
	return "estates"
}

// EstateStreet is a named street within an estate, used on resident addresses.
type EstateStreet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EstateID  uint      `gorm:"not null;index" json:"estate_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (EstateStreet) TableName() string {
	return "estate_streets"
}

// ChangeRequest is an estate admin's ask to the platform back office.
type ChangeRequest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EstateID  uint      `gorm:"not null;index" json:"estate_id"`
	AdminName string    `gorm:"size:100" json:"admin_name"`
	Subject   string    `gorm:"size:150;not null" json:"subject"`
	Details   string    `gorm:"type:text;not null" json:"details"`
	Status    string    `gorm:"size:20;default:'pending'" json:"status"` // pending | resolved
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ChangeRequest) TableName() string {
	return "change_requests"
}
