package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/studentportal/portal-api/model"
	"github.com/studentportal/portal-api/services/storage"
	"gorm.io/gorm"
)

// MaterialService handles tutor study-material uploads. Uploading is
// gated on an approved tutor-subject link; files live in object storage
// and only the metadata row is kept here.
type MaterialService struct {
	db     *gorm.DB
	spaces *storage.SpacesClient
}

// NewMaterialService creates a new material service. spaces may be nil,
// in which case uploads are rejected.
func NewMaterialService(db *gorm.DB, spaces *storage.SpacesClient) *MaterialService {
	return &MaterialService{
		db:     db,
		spaces: spaces,
	}
}

// ErrStorageUnavailable is returned when no object storage is configured
var ErrStorageUnavailable = errors.New("object storage is not configured")

// UploadMaterial stores the file and records the material row. The tutor
// must hold an approved link for the subject.
func (s *MaterialService) UploadMaterial(ctx context.Context, tutorID, subjectID uint, title, description, filename string, content []byte) (*model.TutorMaterial, error) {
	if s.spaces == nil {
		return nil, ErrStorageUnavailable
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.TutorSubject{}).
		Where("tutor_id = ? AND subject_id = ? AND approved = ?", tutorID, subjectID, true).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check approval: %w", err)
	}
	if count == 0 {
		return nil, ErrNotEligible
	}

	key := fmt.Sprintf("materials/%d/%d/%s%s", tutorID, subjectID, uuid.New().String(), filepath.Ext(filename))
	url, err := s.spaces.UploadBytes(ctx, key, content, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to upload material: %w", err)
	}

	material := &model.TutorMaterial{
		Title:       title,
		Description: description,
		FileKey:     key,
		FileURL:     url,
		UploadDate:  time.Now().UTC(),
		TutorID:     tutorID,
		SubjectID:   subjectID,
	}
	if err := s.db.WithContext(ctx).Create(material).Error; err != nil {
		// Best effort cleanup of the orphaned object
		_ = s.spaces.DeleteFile(ctx, key)
		return nil, fmt.Errorf("failed to save material: %w", err)
	}

	return material, nil
}

// ListMaterialsBySubject returns materials for a subject, newest first
func (s *MaterialService) ListMaterialsBySubject(ctx context.Context, subjectID uint) ([]model.TutorMaterial, error) {
	var materials []model.TutorMaterial
	err := s.db.WithContext(ctx).
		Preload("Subject").
		Where("subject_id = ?", subjectID).
		Order("upload_date DESC").
		Find(&materials).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}

// DeleteMaterial removes a material owned by the tutor
func (s *MaterialService) DeleteMaterial(ctx context.Context, tutorID, materialID uint) error {
	var material model.TutorMaterial
	err := s.db.WithContext(ctx).
		Where("id = ? AND tutor_id = ?", materialID, tutorID).
		First(&material).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load material: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&material).Error; err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}

	if s.spaces != nil {
		_ = s.spaces.DeleteFile(ctx, material.FileKey)
	}
	return nil
}
