package model

import (
	"time"

	"gorm.io/gorm"
)

// Subject represents a teachable subject tied to a single grade.
// Name is unique within its grade.
type Subject struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null;uniqueIndex:idx_subjects_name_grade" json:"name"`
	Grade     int            `gorm:"not null;uniqueIndex:idx_subjects_name_grade" json:"grade"`

	// Relationships
	StudentLinks []StudentSubject `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"-"`
	TutorLinks   []TutorSubject   `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"-"`
}
