package model

import (
	"time"

	"gorm.io/gorm"
)

// GradeBand is the range of grades a tutor teaches
type GradeBand string

const (
	GradeBandJunior GradeBand = "4-9"
	GradeBandSenior GradeBand = "10-12"
)

// IsValidGradeBand reports whether the given string is a known grade band
func IsValidGradeBand(band string) bool {
	switch GradeBand(band) {
	case GradeBandJunior, GradeBandSenior:
		return true
	}
	return false
}

// Tutor is the tutor profile owned by a user. At most one per user,
// enforced by the unique index on UserID.
type Tutor struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	UserID       uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	GradeBand    GradeBand      `gorm:"type:varchar(10);not null" json:"grade_band"`
	Bio          string         `gorm:"type:text" json:"bio"`
	ContactInfo  string         `gorm:"type:varchar(255)" json:"contact_info"`
	HireDate     time.Time      `json:"hire_date"`
	RegisteredAt time.Time      `json:"registered_at"`
	Status       UserStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`

	// Relationships
	User      User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Subjects  []TutorSubject  `gorm:"foreignKey:TutorID;constraint:OnDelete:CASCADE" json:"subjects,omitempty"`
	Materials []TutorMaterial `gorm:"foreignKey:TutorID;constraint:OnDelete:CASCADE" json:"-"`
}

// TutorSubject links a tutor to a subject they want to teach. Every link
// starts unapproved; Approved flips only through an explicit admin action.
type TutorSubject struct {
	TutorID        uint      `gorm:"primaryKey" json:"tutor_id"`
	SubjectID      uint      `gorm:"primaryKey" json:"subject_id"`
	Approved       bool      `gorm:"not null;default:false" json:"approved"`
	DateRegistered time.Time `gorm:"autoCreateTime" json:"date_registered"`

	// Relationships
	Tutor   Tutor   `gorm:"foreignKey:TutorID;constraint:OnDelete:CASCADE" json:"-"`
	Subject Subject `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
}
