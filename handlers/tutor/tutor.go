package tutor

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/studentportal/portal-api/handlers"
	"github.com/studentportal/portal-api/model"
	"github.com/studentportal/portal-api/services"
	"github.com/studentportal/portal-api/utils/middleware"
	"github.com/studentportal/portal-api/utils/response"
	"github.com/studentportal/portal-api/utils/validation"
	"gorm.io/gorm"
)

// TutorHandler handles tutor profile requests
type TutorHandler struct {
	db              *gorm.DB
	profileService  *services.ProfileService
	approvalService *services.ApprovalService
	validator       *validation.Validator
}

// NewTutorHandler creates a new tutor handler
func NewTutorHandler(db *gorm.DB, profileService *services.ProfileService, approvalService *services.ApprovalService) *TutorHandler {
	return &TutorHandler{
		db:              db,
		profileService:  profileService,
		approvalService: approvalService,
		validator:       validation.NewValidator(),
	}
}

// EnrollRequest is the body for creating a tutor profile
type EnrollRequest struct {
	GradeBand          string `json:"grade_band" validate:"required,oneof=4-9 10-12"`
	Bio                string `json:"bio" validate:"omitempty,max=2000"`
	ContactInfo        string `json:"contact_info" validate:"omitempty,max=255"`
	SelectedSubjectIDs []uint `json:"selected_subject_ids" validate:"required,min=1"`
}

// Create handles POST /api/v1/tutors
func (h *TutorHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}
	if user.Role != model.RoleTutor {
		return response.Forbidden(c, "Only tutors can create a tutor profile")
	}

	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Bio = validation.SanitizeString(req.Bio)
	req.ContactInfo = validation.SanitizeString(req.ContactInfo)
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	tutor, err := h.profileService.RegisterTutorProfile(c.Context(), services.TutorEnrollmentRequest{
		UserID:             user.ID,
		GradeBand:          model.GradeBand(req.GradeBand),
		Bio:                req.Bio,
		ContactInfo:        req.ContactInfo,
		SelectedSubjectIDs: req.SelectedSubjectIDs,
	})
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.Created(c, tutor)
}

// GetMine handles GET /api/v1/tutors/me
func (h *TutorHandler) GetMine(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	tutor, err := h.profileService.GetTutorByUserID(c.Context(), userID)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.Success(c, tutor)
}

// UpdateRequest is the body for editing tutor details
type UpdateRequest struct {
	GradeBand   string `json:"grade_band" validate:"required,oneof=4-9 10-12"`
	Bio         string `json:"bio" validate:"omitempty,max=2000"`
	ContactInfo string `json:"contact_info" validate:"omitempty,max=255"`
}

// Update handles PUT /api/v1/tutors/me
func (h *TutorHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Bio = validation.SanitizeString(req.Bio)
	req.ContactInfo = validation.SanitizeString(req.ContactInfo)
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	tutor, err := h.profileService.UpdateTutorProfile(c.Context(), userID, model.GradeBand(req.GradeBand), req.Bio, req.ContactInfo)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.Success(c, tutor)
}

// Delete handles DELETE /api/v1/tutors/me
func (h *TutorHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	if err := h.profileService.DeleteTutorProfile(c.Context(), userID); err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.NoContent(c)
}

// RequestApproval handles POST /api/v1/tutors/me/subjects/:subjectId/request
func (h *TutorHandler) RequestApproval(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	subjectID, err := strconv.ParseUint(c.Params("subjectId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject id")
	}

	tutor, err := h.profileService.GetTutorByUserID(c.Context(), userID)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	link, err := h.approvalService.RequestSubjectApproval(c.Context(), tutor.ID, uint(subjectID))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.Created(c, link)
}

// List handles GET /api/v1/tutors (admin only, paginated)
func (h *TutorHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	var total int64
	if err := h.db.Model(&model.Tutor{}).Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count tutors")
	}

	pagination := response.CalculatePagination(page, limit, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var tutors []model.Tutor
	err := h.db.
		Preload("User").
		Preload("Subjects.Subject").
		Order("created_at DESC").
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&tutors).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch tutors")
	}

	return response.Paginated(c, tutors, pagination)
}
