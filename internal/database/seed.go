package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/project-hub-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the bootstrap admin when credentials are configured and no
// admin exists yet.
func SeedAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.Principal{}).
		Where("kind = ?", models.KindAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check admin principal: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.Principal{
		Kind:         models.KindAdmin,
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	log.Printf("Created default admin %s", email)
	return nil
}
