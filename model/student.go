package model

import (
	"time"

	"gorm.io/gorm"
)

// Grade bounds supported by the portal. Grades 4-9 get the full subject
// set for their band auto-assigned; grades 10-12 pick exactly four.
const (
	MinGrade       = 4
	MaxGrade       = 12
	MinSeniorGrade = 10
)

// Student is the student profile owned by a user. At most one per user,
// enforced by the unique index on UserID.
type Student struct {
	ID                     uint           `gorm:"primaryKey" json:"id"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"-"`
	UserID                 uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	DateOfBirth            time.Time      `gorm:"not null" json:"date_of_birth"`
	Grade                  int            `gorm:"not null" json:"grade"`
	EnrollmentDate         time.Time      `gorm:"not null" json:"enrollment_date"`
	CanJoinSubjectChannels bool           `gorm:"default:false" json:"can_join_subject_channels"` // derived from age, never client-set
	Status                 UserStatus     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	// Relationships
	User     User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Subjects []StudentSubject `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"subjects,omitempty"`
	Courses  []StudentCourse  `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"courses,omitempty"`
}

// StudentSubject links a student to one of their enrolled subjects
type StudentSubject struct {
	StudentID uint `gorm:"primaryKey" json:"student_id"`
	SubjectID uint `gorm:"primaryKey" json:"subject_id"`

	// Relationships
	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Subject Subject `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
}

// StudentCourse enrolls a student into a course from the catalog
type StudentCourse struct {
	StudentID  uint  `gorm:"primaryKey" json:"student_id"`
	CourseID   uint  `gorm:"primaryKey" json:"course_id"`
	EnrolledAt int64 `gorm:"autoCreateTime" json:"enrolled_at"`

	// Relationships
	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Course  Course  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
