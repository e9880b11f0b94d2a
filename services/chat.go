package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/studentportal/portal-api/model"
	"gorm.io/gorm"
)

// ChatService manages channel membership and messages. Eligibility:
// students need the derived can-join flag plus a grade match; tutors need
// an approved link for the channel's subject. Admins can join anything.
type ChatService struct {
	db *gorm.DB
}

// NewChatService creates a new chat service
func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

// ListChannels returns all channels with their subject preloaded
func (s *ChatService) ListChannels(ctx context.Context) ([]model.ChatChannel, error) {
	var channels []model.ChatChannel
	err := s.db.WithContext(ctx).
		Preload("Subject").
		Order("grade ASC").
		Find(&channels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

// JoinChannel adds the user to the channel after the eligibility check
func (s *ChatService) JoinChannel(ctx context.Context, userID, channelID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var channel model.ChatChannel
		if err := tx.First(&channel, channelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load channel: %w", err)
		}

		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		eligible, err := s.isEligible(tx, &user, &channel)
		if err != nil {
			return err
		}
		if !eligible {
			return ErrNotEligible
		}

		membership := model.UserChatChannel{
			UserID:    userID,
			ChannelID: channelID,
		}
		if err := tx.Create(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil // already a member
			}
			return fmt.Errorf("failed to join channel: %w", err)
		}
		return nil
	})
}

func (s *ChatService) isEligible(tx *gorm.DB, user *model.User, channel *model.ChatChannel) (bool, error) {
	switch user.Role {
	case model.RoleAdmin:
		return true, nil

	case model.RoleStudent:
		var student model.Student
		if err := tx.Where("user_id = ?", user.ID).First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("failed to load student: %w", err)
		}
		return student.CanJoinSubjectChannels && student.Grade == channel.Grade, nil

	case model.RoleTutor:
		// Subject channels require an approved link; the grade-wide
		// channel has no subject to be approved for.
		if channel.SubjectID == nil {
			return false, nil
		}
		var tutor model.Tutor
		if err := tx.Where("user_id = ?", user.ID).First(&tutor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("failed to load tutor: %w", err)
		}
		var count int64
		err := tx.Model(&model.TutorSubject{}).
			Where("tutor_id = ? AND subject_id = ? AND approved = ?", tutor.ID, *channel.SubjectID, true).
			Count(&count).Error
		if err != nil {
			return false, fmt.Errorf("failed to check approval: %w", err)
		}
		return count > 0, nil
	}

	return false, nil
}

// LeaveChannel removes the user's membership row
func (s *ChatService) LeaveChannel(ctx context.Context, userID, channelID uint) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		Delete(&model.UserChatChannel{})
	if result.Error != nil {
		return fmt.Errorf("failed to leave channel: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotAMember
	}
	return nil
}

// PostMessage appends a message with a server-assigned timestamp. The
// sender must already be a member of the channel.
func (s *ChatService) PostMessage(ctx context.Context, userID, channelID uint, text string) (*model.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	var message *model.ChatMessage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.UserChatChannel{}).
			Where("user_id = ? AND channel_id = ?", userID, channelID).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check membership: %w", err)
		}
		if count == 0 {
			return ErrNotAMember
		}

		message = &model.ChatMessage{
			UserID:    userID,
			ChannelID: channelID,
			Text:      text,
			SentAt:    time.Now().UTC(),
		}
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to post message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

// ListMessages returns the most recent messages for a channel, newest
// last, restricted to members
func (s *ChatService) ListMessages(ctx context.Context, userID, channelID uint, limit int) ([]model.ChatMessage, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.UserChatChannel{}).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if count == 0 {
		return nil, ErrNotAMember
	}

	var messages []model.ChatMessage
	err = s.db.WithContext(ctx).
		Preload("User").
		Where("channel_id = ?", channelID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	// Reverse to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
