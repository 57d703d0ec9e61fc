package auth

import (
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(user *User) error
	FindByEmail(email string) (*User, error)
	FindByID(id uint) (*User, error)
	FindRoleByName(name string) (*UserRole, error)
	ListActiveRoles() ([]UserRole, error)
	UpdatePassword(userID uint, hash string) error
	SetResetToken(userID uint, token string, expiry time.Time) error
	FindByResetToken(token string) (*User, error)
	ClearResetToken(userID uint) error
	UpdateStatusByEstate(estateID uint, status string) error
	ListByRole(roleName string) ([]User, error)
	DeleteByID(id uint) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(user *User) error {
	return r.db.Create(user).Error
}

func (r *repository) FindByEmail(email string) (*User, error) {
	var user User
	err := r.db.Preload("Role").Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByID(id uint) (*User, error) {
	var user User
	err := r.db.Preload("Role").First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindRoleByName(name string) (*UserRole, error) {
	var role UserRole
	err := r.db.Where("role_name = ? AND is_active = ?", name, true).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) ListActiveRoles() ([]UserRole, error) {
	var roles []UserRole
	err := r.db.Where("is_active = ?", true).Order("id").Find(&roles).Error
	return roles, err
}

func (r *repository) UpdatePassword(userID uint, hash string) error {
	return r.db.Model(&User{}).Where("id = ?", userID).
		Update("password_hash", hash).Error
}

func (r *repository) SetResetToken(userID uint, token string, expiry time.Time) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"forgot_password_token":  token,
		"forgot_password_expiry": expiry,
	}).Error
}

func (r *repository) FindByResetToken(token string) (*User, error) {
	var user User
	err := r.db.Where("forgot_password_token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) UpdateStatusByEstate(estateID uint, status string) error {
	return r.db.Model(&User{}).Where("estate_id = ?", estateID).
		Update("status", status).Error
}

func (r *repository) ListByRole(roleName string) ([]User, error) {
	var users []User
	err := r.db.Preload("Role").
		Joins("JOIN user_roles ON user_roles.id = users.role_id").
		Where("user_roles.role_name = ?", roleName).
		Order("users.created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *repository) DeleteByID(id uint) (int64, error) {
	res := r.db.Delete(&User{}, id)
	return res.RowsAffected, res.Error
}

func (r *repository) ClearResetToken(userID uint) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"forgot_password_token":  "",
		"forgot_password_expiry": nil,
	}).Error
}
