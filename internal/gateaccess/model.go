package gateaccess

import (
	"time"
)

// PassType distinguishes visitor passes from official/staff passes.
type PassType string

const (
	PassVisitor  PassType = "visitor"
	PassOfficial PassType = "official"
)

// RequestStatus is the lifecycle of a visit request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// RequestPurpose says who a visit request is addressed to: a resident host,
// or the estate office itself for official callers.
type RequestPurpose string

const (
	PurposeResident RequestPurpose = "resident"
	PurposeOfficial RequestPurpose = "official"
)

// PinStatus is the lifecycle of a batch-issued gate pin.
type PinStatus string

const (
	PinActive PinStatus = "active"
	PinUsed   PinStatus = "used"
)

// TokenStatus is the lifecycle of an annual resident token.
type TokenStatus string

const (
	TokenUnused TokenStatus = "unused"
	TokenActive TokenStatus = "active"
)

// VisitorPass is a one-off access code a resident (or the estate office, for
// officials) hands to someone expected at the gate.
type VisitorPass struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EstateID   uint   `gorm:"not null;index" json:"estate_db_id"`
	EstateCode string `gorm:"size:6;not null;index" json:"estate_id"`

	// Host resident; nil for official passes issued by the estate office
	ResidentID *uint  `gorm:"index" json:"resident_id,omitempty"`
	HostName   string `gorm:"size:100" json:"host_name"`

	VisitorName string   `gorm:"size:100;not null" json:"visitor_name"`
	Purpose     string   `gorm:"size:255" json:"purpose,omitempty"`
	Code        string   `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Type        PassType `gorm:"size:10;not null;default:'visitor'" json:"type"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (VisitorPass) TableName() string {
	return "visitor_passes"
}

// VisitRequest is a visitor-initiated ask: "let me in to see this resident"
// or, for official callers, "let me in to the estate office". It stays pending
// until the addressed party approves or rejects it.
type VisitRequest struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EstateID   uint   `gorm:"not null;index" json:"estate_db_id"`
	EstateCode string `gorm:"size:6;not null;index" json:"estate_id"`

	// Public tracking code in the form REQ-XXXXX
	RequestCode string `gorm:"size:10;uniqueIndex;not null" json:"request_code"`

	VisitorName  string         `gorm:"size:100;not null" json:"visitor_name"`
	VisitorPhone string         `gorm:"size:20;not null" json:"visitor_phone"`
	Purpose      RequestPurpose `gorm:"size:10;not null;default:'resident';index" json:"purpose"`
	Reason       string         `gorm:"size:255" json:"reason,omitempty"`

	// Resolved host; nil for official requests addressed to the estate office
	ResidentID     *uint  `gorm:"index" json:"resident_id,omitempty"`
	ResidentUserID string `gorm:"size:10" json:"resident_user_id,omitempty"`
	ResidentName   string `gorm:"size:100" json:"resident_name,omitempty"`

	Status RequestStatus `gorm:"size:10;not null;default:'pending';index" json:"status"`

	// Free-text note the deciding party leaves with the decision
	Note string `gorm:"size:255" json:"note,omitempty"`

	// Set on approval; the tracking endpoint hands these to the visitor
	AccessCode    string     `gorm:"size:10" json:"access_code,omitempty"`
	VisitorPassID *uint      `json:"visitor_pass_id,omitempty"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (VisitRequest) TableName() string {
	return "visit_requests"
}

// AccessPin is a batch-issued 6-digit pin sold or handed out by the estate
// office. Each pin admits exactly one entry before its year-end expiry.
type AccessPin struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EstateID   uint   `gorm:"not null;index" json:"estate_db_id"`
	EstateCode string `gorm:"size:6;not null;index" json:"estate_id"`

	Serial string    `gorm:"size:30;uniqueIndex;not null" json:"serial"`
	Pin    string    `gorm:"size:6;not null;index" json:"pin"`
	Status PinStatus `gorm:"size:10;not null;default:'active';index" json:"status"`

	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AccessPin) TableName() string {
	return "access_pins"
}

// ResidentToken is an annual token a resident activates once; after
// activation it verifies at the gate for the rest of the year.
type ResidentToken struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EstateID   uint   `gorm:"not null;index" json:"estate_db_id"`
	EstateCode string `gorm:"size:6;not null;index" json:"estate_id"`

	Serial string      `gorm:"size:30;uniqueIndex;not null" json:"serial"`
	Code   string      `gorm:"size:12;uniqueIndex;not null" json:"code"`
	Status TokenStatus `gorm:"size:10;not null;default:'unused';index" json:"status"`

	ResidentID  *uint      `gorm:"index" json:"resident_id,omitempty"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ResidentToken) TableName() string {
	return "resident_tokens"
}

// EndOfYear returns Dec 31 23:59:59 of the current year, the expiry stamped on
// every batch-issued pin and token.
func EndOfYear(now time.Time) time.Time {
	return time.Date(now.Year(), time.December, 31, 23, 59, 59, 0, now.Location())
}
