package model

import (
	"time"

	"gorm.io/gorm"
)

// UserRole identifies what a user is allowed to do. A role is assigned
// exactly once at registration; only an admin can change it afterwards.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTutor   UserRole = "tutor"
	RoleAdmin   UserRole = "admin"
)

// UserStatus represents the account state
type UserStatus string

const (
	StatusPending UserStatus = "pending"
	StatusActive  UserStatus = "active"
	StatusBlocked UserStatus = "blocked"
)

// User represents a registered user in the portal
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	FullName     string         `gorm:"not null" json:"full_name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string         `gorm:"type:varchar(30)" json:"phone"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Role         UserRole       `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	Status       UserStatus     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	TokenVersion int            `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships. A user owns at most one student profile and at most
	// one tutor profile; deleting the user cascades to both.
	StudentProfile *Student          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"student_profile,omitempty"`
	TutorProfile   *Tutor            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"tutor_profile,omitempty"`
	ChatChannels   []UserChatChannel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ChatMessages   []ChatMessage     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []RevokedToken    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AuditEntries   []AdminAuditLog   `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsValidRole reports whether the given string is a known role
func IsValidRole(role string) bool {
	switch UserRole(role) {
	case RoleStudent, RoleTutor, RoleAdmin:
		return true
	}
	return false
}
