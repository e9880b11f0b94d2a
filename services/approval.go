package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/studentportal/portal-api/model"
	"gorm.io/gorm"
)

// ApprovalService manages the tutor-subject approval workflow. A link
// moves from requested (approved=false) to approved (approved=true) and
// never back; revocation is deliberately not exposed.
type ApprovalService struct {
	db *gorm.DB
}

// NewApprovalService creates a new approval service
func NewApprovalService(db *gorm.DB) *ApprovalService {
	return &ApprovalService{db: db}
}

// RequestSubjectApproval creates an unapproved link between a tutor and a
// subject. Re-requesting an existing unapproved link is a no-op;
// requesting an already-approved link fails with ErrAlreadyApproved.
func (s *ApprovalService) RequestSubjectApproval(ctx context.Context, tutorID, subjectID uint) (*model.TutorSubject, error) {
	var link model.TutorSubject

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("tutor_id = ? AND subject_id = ?", tutorID, subjectID).First(&link).Error
		if err == nil {
			if link.Approved {
				return ErrAlreadyApproved
			}
			return nil // idempotent re-request
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load link: %w", err)
		}

		var subjectCount int64
		if err := tx.Model(&model.Subject{}).Where("id = ?", subjectID).Count(&subjectCount).Error; err != nil {
			return fmt.Errorf("failed to check subject: %w", err)
		}
		if subjectCount == 0 {
			return ErrUnknownSubject
		}

		link = model.TutorSubject{
			TutorID:   tutorID,
			SubjectID: subjectID,
			Approved:  false,
		}
		if err := tx.Create(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateLink
			}
			return fmt.Errorf("failed to create link: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ApproveSubject flips a requested link to approved. Only an admin-capable
// caller may do this; the capability is an explicit parameter rather than
// ambient middleware state.
func (s *ApprovalService) ApproveSubject(ctx context.Context, callerIsAdmin bool, tutorID, subjectID uint) (*model.TutorSubject, error) {
	if !callerIsAdmin {
		return nil, ErrNotAllowed
	}

	var link model.TutorSubject
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("tutor_id = ? AND subject_id = ?", tutorID, subjectID).First(&link).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLinkNotFound
			}
			return fmt.Errorf("failed to load link: %w", err)
		}
		if link.Approved {
			return nil // already in the target state
		}

		link.Approved = true
		if err := tx.Model(&model.TutorSubject{}).
			Where("tutor_id = ? AND subject_id = ?", tutorID, subjectID).
			Update("approved", true).Error; err != nil {
			return fmt.Errorf("failed to approve link: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// IsApprovedForSubject reports whether the tutor holds an approved link
// for the subject
func (s *ApprovalService) IsApprovedForSubject(ctx context.Context, tutorID, subjectID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.TutorSubject{}).
		Where("tutor_id = ? AND subject_id = ? AND approved = ?", tutorID, subjectID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check approval: %w", err)
	}
	return count > 0, nil
}

// ListPendingApprovals returns unapproved links for the admin review page
func (s *ApprovalService) ListPendingApprovals(ctx context.Context) ([]model.TutorSubject, error) {
	var links []model.TutorSubject
	err := s.db.WithContext(ctx).
		Preload("Subject").
		Preload("Tutor.User").
		Where("approved = ?", false).
		Order("date_registered ASC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	return links, nil
}
