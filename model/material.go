package model

import (
	"time"

	"gorm.io/gorm"
)

// TutorMaterial is a study document a tutor uploaded for one of their
// approved subjects. FileKey is the object-storage key; FileURL the
// public URL returned by the storage backend.
type TutorMaterial struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	FileKey     string         `gorm:"not null" json:"-"`
	FileURL     string         `gorm:"not null" json:"file_url"`
	UploadDate  time.Time      `gorm:"not null" json:"upload_date"`
	TutorID     uint           `gorm:"not null;index" json:"tutor_id"`
	SubjectID   uint           `gorm:"not null;index" json:"subject_id"`

	// Relationships
	Tutor   Tutor   `gorm:"foreignKey:TutorID;constraint:OnDelete:CASCADE" json:"-"`
	Subject Subject `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
}
