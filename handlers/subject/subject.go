package subject

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/studentportal/portal-api/model"
	"github.com/studentportal/portal-api/utils/response"
	"github.com/studentportal/portal-api/utils/validation"
	"gorm.io/gorm"
)

// SubjectHandler handles subject catalog CRUD
type SubjectHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewSubjectHandler creates a new subject handler
func NewSubjectHandler(db *gorm.DB) *SubjectHandler {
	return &SubjectHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateSubjectRequest represents a new catalog entry
type CreateSubjectRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Grade int    `json:"grade" validate:"required,gte=4,lte=12"`
}

// UpdateSubjectRequest represents a partial subject edit
type UpdateSubjectRequest struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=100"`
}

// List handles GET /api/v1/subjects. Optional ?grade= filter.
func (h *SubjectHandler) List(c *fiber.Ctx) error {
	query := h.db.Model(&model.Subject{})
	if gradeStr := c.Query("grade"); gradeStr != "" {
		grade, err := strconv.Atoi(gradeStr)
		if err != nil || grade < model.MinGrade || grade > model.MaxGrade {
			return response.BadRequest(c, "Invalid grade filter")
		}
		query = query.Where("grade = ?", grade)
	}

	var subjects []model.Subject
	if err := query.Order("grade ASC, name ASC").Find(&subjects).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch subjects")
	}

	return response.Success(c, subjects)
}

// Get handles GET /api/v1/subjects/:id
func (h *SubjectHandler) Get(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject id")
	}

	var subject model.Subject
	if err := h.db.First(&subject, uint(subjectID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to fetch subject")
	}

	return response.Success(c, subject)
}

// Create handles POST /api/v1/subjects (admin only)
func (h *SubjectHandler) Create(c *fiber.Ctx) error {
	var req CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	subject := model.Subject{
		Name:  validation.SanitizeString(req.Name),
		Grade: req.Grade,
	}
	if err := h.db.Create(&subject).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return response.Conflict(c, "A subject with this name already exists for this grade")
		}
		return response.InternalServerError(c, "Failed to create subject")
	}

	return response.Created(c, subject)
}

// Update handles PATCH /api/v1/subjects/:id (admin only).
// Grade is immutable once enrollments may reference the subject.
func (h *SubjectHandler) Update(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject id")
	}

	var req UpdateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var subject model.Subject
	if err := h.db.First(&subject, uint(subjectID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to fetch subject")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = validation.SanitizeString(*req.Name)
	}
	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if err := h.db.Model(&subject).Updates(updates).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return response.Conflict(c, "A subject with this name already exists for this grade")
		}
		return response.InternalServerError(c, "Failed to update subject")
	}

	return response.SuccessWithMessage(c, "Subject updated successfully", subject)
}

// Delete handles DELETE /api/v1/subjects/:id (admin only)
func (h *SubjectHandler) Delete(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject id")
	}

	result := h.db.Delete(&model.Subject{}, uint(subjectID))
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete subject")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Subject not found")
	}

	return response.NoContent(c)
}
