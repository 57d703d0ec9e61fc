package payment

import (
	"time"
)

// Levy is a charge the estate raises on its residents, e.g. the annual
// security levy.
type Levy struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EstateID   uint   `gorm:"not null;index" json:"estate_db_id"`
	EstateCode string `gorm:"size:6;not null" json:"estate_id"`

	Title       string `gorm:"size:150;not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Amount in the currency's minor unit
	Amount   int64  `gorm:"not null" json:"amount"`
	Currency string `gorm:"size:3;default:'NGN'" json:"currency"`

	DueDate   *time.Time `json:"due_date,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Levy) TableName() string {
	return "levies"
}

// Payment tracks one resident's payment attempt against a levy.
type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EstateID   uint   `gorm:"not null;index" json:"estate_db_id"`
	EstateCode string `gorm:"size:6;not null" json:"estate_id"`

	ResidentID   uint   `gorm:"not null;index" json:"resident_id"`
	ResidentName string `gorm:"size:100" json:"resident_name"`

	LevyID    uint   `gorm:"not null;index" json:"levy_id"`
	LevyTitle string `gorm:"size:150" json:"levy_title"`

	// Internal reference in the form PAY-XXXXXXX
	Reference string `gorm:"size:12;uniqueIndex;not null" json:"reference"`

	Amount   int64  `gorm:"not null" json:"amount"`
	Currency string `gorm:"size:3;default:'NGN'" json:"currency"`

	Status string `gorm:"size:10;default:'pending';index" json:"status"` // pending | paid | failed

	RazorpayOrderID   string `gorm:"size:64;index" json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string `gorm:"size:64" json:"razorpay_payment_id,omitempty"`

	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
