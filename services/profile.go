package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/studentportal/portal-api/model"
	"gorm.io/gorm"
)

// ProfileService enforces the one-profile-per-user invariant and applies
// validated enrollments atomically.
type ProfileService struct {
	db               *gorm.DB
	maxTutorSubjects int
}

// NewProfileService creates a new profile service
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{
		db:               db,
		maxTutorSubjects: DefaultMaxTutorSubjects,
	}
}

// StudentEnrollmentRequest is the input for creating or editing a
// student profile
type StudentEnrollmentRequest struct {
	UserID             uint
	Grade              int
	DateOfBirth        time.Time
	SelectedSubjectIDs []uint
}

// TutorEnrollmentRequest is the input for creating a tutor profile
type TutorEnrollmentRequest struct {
	UserID             uint
	GradeBand          model.GradeBand
	Bio                string
	ContactInfo        string
	SelectedSubjectIDs []uint
}

// availableSubjects loads the subject catalog for a grade
func (s *ProfileService) availableSubjects(ctx context.Context, tx *gorm.DB, grade int) ([]model.Subject, error) {
	var subjects []model.Subject
	if err := tx.WithContext(ctx).Where("grade = ?", grade).Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("failed to load subjects: %w", err)
	}
	return subjects, nil
}

// RegisterStudentProfile validates the enrollment and creates the student
// profile plus its subject links as a single transaction. A concurrent
// create for the same user surfaces as ErrProfileAlreadyExists via the
// unique index on user_id.
func (s *ProfileService) RegisterStudentProfile(ctx context.Context, req StudentEnrollmentRequest) (*model.Student, error) {
	var student *model.Student

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Student{}).Where("user_id = ?", req.UserID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing profile: %w", err)
		}
		if count > 0 {
			return ErrProfileAlreadyExists
		}

		available, err := s.availableSubjects(ctx, tx, req.Grade)
		if err != nil {
			return err
		}

		enrollment, err := ValidateStudentEnrollment(req.Grade, req.DateOfBirth, req.SelectedSubjectIDs, available, time.Now())
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		student = &model.Student{
			UserID:                 req.UserID,
			DateOfBirth:            req.DateOfBirth,
			Grade:                  req.Grade,
			EnrollmentDate:         now,
			CanJoinSubjectChannels: enrollment.CanJoinSubjectChannels,
			Status:                 model.StatusActive,
		}
		if err := tx.Create(student).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrProfileAlreadyExists
			}
			return fmt.Errorf("failed to create student: %w", err)
		}

		links := make([]model.StudentSubject, 0, len(enrollment.SubjectIDs))
		for _, subjectID := range enrollment.SubjectIDs {
			links = append(links, model.StudentSubject{
				StudentID: student.ID,
				SubjectID: subjectID,
			})
		}
		if len(links) > 0 {
			if err := tx.Create(&links).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrDuplicateLink
				}
				return fmt.Errorf("failed to create subject links: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

// UpdateStudentProfile re-validates the enrollment against the new grade
// and replaces the subject links atomically. The derived channel flag is
// recomputed; the client never sets it.
func (s *ProfileService) UpdateStudentProfile(ctx context.Context, req StudentEnrollmentRequest) (*model.Student, error) {
	var student model.Student

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", req.UserID).First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load student: %w", err)
		}

		available, err := s.availableSubjects(ctx, tx, req.Grade)
		if err != nil {
			return err
		}

		enrollment, err := ValidateStudentEnrollment(req.Grade, req.DateOfBirth, req.SelectedSubjectIDs, available, time.Now())
		if err != nil {
			return err
		}

		student.DateOfBirth = req.DateOfBirth
		student.Grade = req.Grade
		student.CanJoinSubjectChannels = enrollment.CanJoinSubjectChannels
		if err := tx.Save(&student).Error; err != nil {
			return fmt.Errorf("failed to update student: %w", err)
		}

		if err := tx.Where("student_id = ?", student.ID).Delete(&model.StudentSubject{}).Error; err != nil {
			return fmt.Errorf("failed to clear subject links: %w", err)
		}
		links := make([]model.StudentSubject, 0, len(enrollment.SubjectIDs))
		for _, subjectID := range enrollment.SubjectIDs {
			links = append(links, model.StudentSubject{
				StudentID: student.ID,
				SubjectID: subjectID,
			})
		}
		if len(links) > 0 {
			if err := tx.Create(&links).Error; err != nil {
				return fmt.Errorf("failed to create subject links: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// GetStudentByUserID returns the student profile with subjects preloaded
func (s *ProfileService) GetStudentByUserID(ctx context.Context, userID uint) (*model.Student, error) {
	var student model.Student
	err := s.db.WithContext(ctx).
		Preload("Subjects.Subject").
		Where("user_id = ?", userID).
		First(&student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	return &student, nil
}

// DeleteStudentProfile removes the profile; join rows cascade
func (s *ProfileService) DeleteStudentProfile(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student model.Student
		if err := tx.Where("user_id = ?", userID).First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load student: %w", err)
		}
		if err := tx.Where("student_id = ?", student.ID).Delete(&model.StudentSubject{}).Error; err != nil {
			return fmt.Errorf("failed to delete subject links: %w", err)
		}
		if err := tx.Delete(&student).Error; err != nil {
			return fmt.Errorf("failed to delete student: %w", err)
		}
		return nil
	})
}

// RegisterTutorProfile validates the subject selection and creates the
// tutor profile plus its unapproved subject links in one transaction.
func (s *ProfileService) RegisterTutorProfile(ctx context.Context, req TutorEnrollmentRequest) (*model.Tutor, error) {
	var tutor *model.Tutor

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Tutor{}).Where("user_id = ?", req.UserID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing profile: %w", err)
		}
		if count > 0 {
			return ErrProfileAlreadyExists
		}

		var available []model.Subject
		if err := tx.Find(&available).Error; err != nil {
			return fmt.Errorf("failed to load subjects: %w", err)
		}

		enrollment, err := ValidateTutorEnrollment(req.SelectedSubjectIDs, available, s.maxTutorSubjects)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		tutor = &model.Tutor{
			UserID:       req.UserID,
			GradeBand:    req.GradeBand,
			Bio:          req.Bio,
			ContactInfo:  req.ContactInfo,
			HireDate:     now,
			RegisteredAt: now,
			Status:       model.StatusPending,
			IsActive:     true,
		}
		if err := tx.Create(tutor).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrProfileAlreadyExists
			}
			return fmt.Errorf("failed to create tutor: %w", err)
		}

		links := make([]model.TutorSubject, 0, len(enrollment.SubjectIDs))
		for _, subjectID := range enrollment.SubjectIDs {
			links = append(links, model.TutorSubject{
				TutorID:   tutor.ID,
				SubjectID: subjectID,
				Approved:  false,
			})
		}
		if err := tx.Create(&links).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateLink
			}
			return fmt.Errorf("failed to create subject links: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tutor, nil
}

// GetTutorByUserID returns the tutor profile with subject links preloaded
func (s *ProfileService) GetTutorByUserID(ctx context.Context, userID uint) (*model.Tutor, error) {
	var tutor model.Tutor
	err := s.db.WithContext(ctx).
		Preload("Subjects.Subject").
		Where("user_id = ?", userID).
		First(&tutor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load tutor: %w", err)
	}
	return &tutor, nil
}

// UpdateTutorProfile edits bio/contact details. Subject links are managed
// through the approval workflow, not here.
func (s *ProfileService) UpdateTutorProfile(ctx context.Context, userID uint, gradeBand model.GradeBand, bio, contactInfo string) (*model.Tutor, error) {
	var tutor model.Tutor
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&tutor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load tutor: %w", err)
	}

	tutor.GradeBand = gradeBand
	tutor.Bio = bio
	tutor.ContactInfo = contactInfo
	if err := s.db.WithContext(ctx).Save(&tutor).Error; err != nil {
		return nil, fmt.Errorf("failed to update tutor: %w", err)
	}
	return &tutor, nil
}

// DeleteTutorProfile removes the profile and its join rows
func (s *ProfileService) DeleteTutorProfile(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tutor model.Tutor
		if err := tx.Where("user_id = ?", userID).First(&tutor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load tutor: %w", err)
		}
		if err := tx.Where("tutor_id = ?", tutor.ID).Delete(&model.TutorSubject{}).Error; err != nil {
			return fmt.Errorf("failed to delete subject links: %w", err)
		}
		if err := tx.Delete(&tutor).Error; err != nil {
			return fmt.Errorf("failed to delete tutor: %w", err)
		}
		return nil
	})
}
