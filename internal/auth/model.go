package auth

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents the user_roles table
type UserRole struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RoleName    string    `gorm:"size:50;uniqueIndex;not null" json:"role_name"`
	Description string    `gorm:"size:255" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// User represents a back-office or security user (estate admins, gate
// operators, super admins). Residents live in their own table and log in
// with their resident ID instead.
type User struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	FullName             string         `gorm:"column:full_name;size:100;not null" json:"name"`
	Email                string         `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone                string         `gorm:"size:20" json:"phone"`
	PasswordHash         string         `gorm:"column:password_hash;size:255;not null" json:"-"`
	RoleID               uint           `gorm:"column:role_id" json:"-"`
	Role                 UserRole       `gorm:"foreignKey:RoleID" json:"role"`
	EstateID             *uint          `gorm:"column:estate_id;index" json:"estate_id"`
	Status               string         `gorm:"size:20;default:active" json:"status"`
	ForgotPasswordToken  string         `gorm:"column:forgot_password_token" json:"-"`
	ForgotPasswordExpiry *time.Time     `gorm:"column:forgot_password_expiry" json:"-"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// PublicRoleResponse is the role list exposed to the registration form.
type PublicRoleResponse struct {
	ID       uint   `json:"id"`
	RoleName string `json:"role_name"`
}
