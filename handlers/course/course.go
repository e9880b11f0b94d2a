package course

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

// CourseHandler handles course catalog CRUD and student course enrollment
type CourseHandler struct {
	db             *gorm.DB
	profileService *services.ProfileService
	validator      *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB, profileService *services.ProfileService) *CourseHandler {
	return &CourseHandler{
		db:             db,
		profileService: profileService,
		validator:      validation.NewValidator(),
	}
}

// CourseRequest represents a course create or update body
type CourseRequest struct {
	Title string `json:"title" validate:"required,min=2,max=100"`
}

// List handles GET /api/v1/courses
func (h *CourseHandler) List(c *fiber.Ctx) error {
	var courses []model.Course
	if err := h.db.Preload("Books.Author").Order("title ASC").Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Success(c, courses)
}

// Get handles GET /api/v1/courses/:id
func (h *CourseHandler) Get(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	var course model.Course
	if err := h.db.Preload("Books.Author").First(&course, uint(courseID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// Create handles POST /api/v1/courses (admin only)
func (h *CourseHandler) Create(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course := model.Course{Title: validation.SanitizeString(req.Title)}
	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// Update handles PATCH /api/v1/courses/:id (admin only)
func (h *CourseHandler) Update(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var course model.Course
	if err := h.db.First(&course, uint(courseID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	course.Title = validation.SanitizeString(req.Title)
	if err := h.db.Save(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.SuccessWithMessage(c, "Course updated successfully", course)
}

// Delete handles DELETE /api/v1/courses/:id (admin only)
func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	result := h.db.Delete(&model.Course{}, uint(courseID))
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Course not found")
	}

	return response.NoContent(c)
}

// Enroll handles POST /api/v1/courses/:id/enroll. The caller must have
// a student profile.
func (h *CourseHandler) Enroll(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	student, err := h.profileService.GetStudentByUserID(c.Context(), userID)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	var course model.Course
	if err := h.db.First(&course, uint(courseID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	link := model.StudentCourse{StudentID: student.ID, CourseID: course.ID}
	if err := h.db.Create(&link).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return response.Conflict(c, "Already enrolled in this course")
		}
		return response.InternalServerError(c, "Failed to enroll in course")
	}

	return response.Created(c, link)
}

// Unenroll handles DELETE /api/v1/courses/:id/enroll
func (h *CourseHandler) Unenroll(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	student, err := h.profileService.GetStudentByUserID(c.Context(), userID)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	result := h.db.
		Where("student_id = ? AND course_id = ?", student.ID, uint(courseID)).
		Delete(&model.StudentCourse{})
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to unenroll from course")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Course enrollment not found")
	}

	return response.NoContent(c)
}
