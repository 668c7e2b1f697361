package seeders

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jigworks/jig_api/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserSeeder handles seeding the default admin and a demo author
type UserSeeder struct {
	db *gorm.DB
}

// NewUserSeeder creates a new user seeder
func NewUserSeeder(db *gorm.DB) *UserSeeder {
	return &UserSeeder{db: db}
}

// SeedUsers creates the default admin and a demo author account
func (s *UserSeeder) SeedUsers() error {
	users := []struct {
		email    string
		username string
		password string
		role     string
	}{
		{"admin@jigworks.io", "admin", "admin123", "admin"},
		{"author@jigworks.io", "demo_author", "author123", "user"},
	}

	for _, u := range users {
		var existing model.User
		err := s.db.Where("email = ?", u.email).First(&existing).Error
		if err == nil {
			log.Printf("User %s already exists, skipping", u.username)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return err
		}

		user := model.User{
			ID:        id.String(),
			Email:     u.email,
			Username:  u.username,
			Password:  string(hashedPassword),
			Role:      u.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.Create(&user).Error; err != nil {
			log.Printf("Error creating user %s: %v", u.username, err)
			return err
		}
		log.Printf("Created user: %s (password: %s)", u.email, u.password)
	}

	log.Println("User seeding completed successfully")
	return nil
}
