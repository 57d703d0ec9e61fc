package auth

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedUserRoles inserts the built-in roles if they are missing.
func SeedUserRoles(db *gorm.DB) error {
	roles := []UserRole{
		{RoleName: "superadmin", Description: "Platform back office"},
		{RoleName: "estateadmin", Description: "Estate administrator"},
		{RoleName: "security", Description: "Gate security operator"},
		{RoleName: "resident", Description: "Estate resident"},
	}

	for _, role := range roles {
		var existing UserRole
		err := db.Where("role_name = ?", role.RoleName).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			role.IsActive = true
			if err := db.Create(&role).Error; err != nil {
				return err
			}
			log.Printf("Seeded role %s", role.RoleName)
		} else if err != nil {
			return err
		}
	}
	return nil
}

// SeedSuperAdminUser creates the initial super admin from env credentials.
func SeedSuperAdminUser(db *gorm.DB) error {
	email := os.Getenv("SUPERADMIN_EMAIL")
	password := os.Getenv("SUPERADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("SUPERADMIN_EMAIL/SUPERADMIN_PASSWORD not set, skipping super admin seed")
		return nil
	}

	var count int64
	if err := db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var role UserRole
	if err := db.Where("role_name = ?", "superadmin").First(&role).Error; err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{
		FullName:     "Super Admin",
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       role.ID,
		Status:       "active",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("Seeded super admin %s", email)
	return nil
}
