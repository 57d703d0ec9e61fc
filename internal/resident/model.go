package resident

import (
	"time"

	"gorm.io/gorm"
)

// Resident is a household account inside an estate. Residents are a separate
// principal from back-office users: they sign in with a generated resident ID
// rather than an email.
type Resident struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FullName string `gorm:"size:100;not null" json:"full_name"`
	Phone    string `gorm:"size:20;not null" json:"phone"`
	Email    string `gorm:"size:100" json:"email,omitempty"`

	EstateID   uint   `gorm:"not null;index" json:"estate_db_id"`
	EstateCode string `gorm:"size:6;not null;index" json:"estate_id"`
	EstateName string `gorm:"size:150" json:"estate_name"`

	Street      string `gorm:"size:100" json:"street"`
	HouseNumber string `gorm:"size:20" json:"house_number"`

	// Login ID in the form USR-XXXXX, printed on the ID card
	UserID       string `gorm:"column:user_id;size:10;uniqueIndex;not null" json:"user_id"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Verified is set when an estate admin scans and approves the resident.
	// Active goes false when the resident moves out.
	Verified bool `gorm:"default:false" json:"verified"`
	Active   bool `gorm:"default:true" json:"active"`

	// Current gate pass code (GP-XXXXXX); empty until approved
	GatePassCode string `gorm:"size:10;index" json:"gate_pass_code,omitempty"`

	// Annual resident token code (RES-XXXXXX) once one is activated
	AnnualToken string `gorm:"size:12" json:"annual_token,omitempty"`

	PhotoURL string `gorm:"size:255" json:"photo_url,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Resident) TableName() string {
	return "residents"
}

// ScanResult is what an estate admin sees after scanning a resident's code.
type ScanResult struct {
	Resident *Resident `json:"resident"`
	Status   string    `json:"status"` // unverified | verified | inactive
}
