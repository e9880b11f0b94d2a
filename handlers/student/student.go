package student

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/studentportal/portal-api/handlers"
	"github.com/studentportal/portal-api/model"
	"github.com/studentportal/portal-api/services"
	"github.com/studentportal/portal-api/utils/middleware"
	"github.com/studentportal/portal-api/utils/response"
	"github.com/studentportal/portal-api/utils/validation"
	"gorm.io/gorm"
)

// StudentHandler handles student profile requests
type StudentHandler struct {
	db             *gorm.DB
	profileService *services.ProfileService
	validator      *validation.Validator
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(db *gorm.DB, profileService *services.ProfileService) *StudentHandler {
	return &StudentHandler{
		db:             db,
		profileService: profileService,
		validator:      validation.NewValidator(),
	}
}

// EnrollRequest is the body for creating or editing a student profile.
// Subject selection only matters for grades 10-12; junior grades get the
// full catalog regardless.
type EnrollRequest struct {
	Grade              int    `json:"grade" validate:"required,gte=4,lte=12"`
	DateOfBirth        string `json:"date_of_birth" validate:"required"` // YYYY-MM-DD
	SelectedSubjectIDs []uint `json:"selected_subject_ids"`
}

func (r *EnrollRequest) parseDOB() (time.Time, error) {
	return time.Parse("2006-01-02", r.DateOfBirth)
}

// Create handles POST /api/v1/students
func (h *StudentHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}
	if user.Role != model.RoleStudent {
		return response.Forbidden(c, "Only students can create a student profile")
	}

	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	dob, err := req.parseDOB()
	if err != nil {
		return response.BadRequest(c, "date_of_birth must be YYYY-MM-DD")
	}

	student, err := h.profileService.RegisterStudentProfile(c.Context(), services.StudentEnrollmentRequest{
		UserID:             user.ID,
		Grade:              req.Grade,
		DateOfBirth:        dob,
		SelectedSubjectIDs: req.SelectedSubjectIDs,
	})
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.Created(c, student)
}

// GetMine handles GET /api/v1/students/me
func (h *StudentHandler) GetMine(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	student, err := h.profileService.GetStudentByUserID(c.Context(), userID)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.Success(c, student)
}

// Update handles PUT /api/v1/students/me
func (h *StudentHandler) Update(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	dob, err := req.parseDOB()
	if err != nil {
		return response.BadRequest(c, "date_of_birth must be YYYY-MM-DD")
	}

	student, err := h.profileService.UpdateStudentProfile(c.Context(), services.StudentEnrollmentRequest{
		UserID:             user.ID,
		Grade:              req.Grade,
		DateOfBirth:        dob,
		SelectedSubjectIDs: req.SelectedSubjectIDs,
	})
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.Success(c, student)
}

// Delete handles DELETE /api/v1/students/me
func (h *StudentHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	if err := h.profileService.DeleteStudentProfile(c.Context(), userID); err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.NoContent(c)
}

// List handles GET /api/v1/students (admin only, paginated)
func (h *StudentHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	grade := c.Query("grade", "")

	query := h.db.Model(&model.Student{})
	if grade != "" {
		query = query.Where("grade = ?", grade)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count students")
	}

	pagination := response.CalculatePagination(page, limit, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var students []model.Student
	err := query.
		Preload("User").
		Preload("Subjects.Subject").
		Order("created_at DESC").
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&students).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch students")
	}

	return response.Paginated(c, students, pagination)
}
