package model

import (
	"time"

	"gorm.io/gorm"
)

// ChatChannel is a discussion channel scoped to a grade, optionally to a
// single subject within that grade. There is one channel per (grade,
// subject) pair, enforced by the composite unique index. Postgres treats
// NULLs as distinct there, so the grade-wide channel (SubjectID nil) gets
// its own partial unique index on grade alone.
type ChatChannel struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Grade     int            `gorm:"not null;uniqueIndex:idx_channels_grade_subject;uniqueIndex:idx_channels_grade_wide,where:subject_id IS NULL" json:"grade"`
	SubjectID *uint          `gorm:"uniqueIndex:idx_channels_grade_subject" json:"subject_id,omitempty"`

	// Relationships
	Subject  *Subject          `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
	Members  []UserChatChannel `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE" json:"-"`
	Messages []ChatMessage     `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserChatChannel records channel membership
type UserChatChannel struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	ChannelID uint      `gorm:"primaryKey" json:"channel_id"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relationships
	User    User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Channel ChatChannel `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE" json:"-"`
}

// ChatMessage is a single message posted to a channel. SentAt is always
// assigned by the server.
type ChatMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	ChannelID uint           `gorm:"not null;index" json:"channel_id"`
	Text      string         `gorm:"type:text;not null" json:"text"`
	SentAt    time.Time      `gorm:"not null" json:"sent_at"`

	// Relationships
	User    User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Channel ChatChannel `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE" json:"-"`
}
