package database

import (
	"fmt"
	"log"
	"os"

	"github.com/studentportal/portal-api/model"
	"github.com/studentportal/portal-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions in dependency order
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedSubjects(); err != nil {
		return fmt.Errorf("failed to seed subjects: %w", err)
	}

	if err := s.SeedChannels(); err != nil {
		return fmt.Errorf("failed to seed channels: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin account. The admin role is
// never assignable through registration.
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Admin user already exists, skipping")
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@portal.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme123"
		log.Println("ADMIN_PASSWORD not set, using default. Change it immediately.")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.User{
		FullName:     "Portal Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Created admin user %s", email)
	return nil
}

// juniorSubjects is the fixed catalog auto-assigned to grades 4-9
var juniorSubjects = []string{"Mathematics", "English", "Science", "Social Studies", "Art"}

// seniorSubjects is the pool grade 10-12 students pick four from
var seniorSubjects = []string{"Mathematics", "English", "Physics", "Chemistry", "Biology", "History", "Geography"}

// SeedSubjects creates the subject catalog for every grade
func (s *Seeder) SeedSubjects() error {
	var count int64
	if err := s.db.Model(&model.Subject{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Subjects already exist, skipping")
		return nil
	}

	var subjects []model.Subject
	for grade := model.MinGrade; grade <= model.MaxGrade; grade++ {
		names := juniorSubjects
		if grade >= model.MinSeniorGrade {
			names = seniorSubjects
		}
		for _, name := range names {
			subjects = append(subjects, model.Subject{Name: name, Grade: grade})
		}
	}

	if err := s.db.Create(&subjects).Error; err != nil {
		return err
	}

	log.Printf("Created %d subjects", len(subjects))
	return nil
}

// SeedChannels creates one grade-wide channel per grade and one channel
// per (grade, subject) pair
func (s *Seeder) SeedChannels() error {
	var count int64
	if err := s.db.Model(&model.ChatChannel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Channels already exist, skipping")
		return nil
	}

	var subjects []model.Subject
	if err := s.db.Find(&subjects).Error; err != nil {
		return err
	}

	var channels []model.ChatChannel
	for grade := model.MinGrade; grade <= model.MaxGrade; grade++ {
		channels = append(channels, model.ChatChannel{Grade: grade})
	}
	for _, subject := range subjects {
		subjectID := subject.ID
		channels = append(channels, model.ChatChannel{
			Grade:     subject.Grade,
			SubjectID: &subjectID,
		})
	}

	if err := s.db.Create(&channels).Error; err != nil {
		return err
	}

	log.Printf("Created %d channels", len(channels))
	return nil
}
