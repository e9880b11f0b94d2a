package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/studentportal/portal-api/handlers"
	"github.com/studentportal/portal-api/model"
	"github.com/studentportal/portal-api/services"
	"github.com/studentportal/portal-api/utils/auth"
	"github.com/studentportal/portal-api/utils/middleware"
	"github.com/studentportal/portal-api/utils/response"
	"github.com/studentportal/portal-api/utils/validation"
	"gorm.io/gorm"
)

// AdminHandler handles administrative operations on users and
// tutor-subject approvals.
type AdminHandler struct {
	db               *gorm.DB
	approvalService  *services.ApprovalService
	blacklistService *auth.BlacklistService
	validator        *validation.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, approvalService *services.ApprovalService) *AdminHandler {
	return &AdminHandler{
		db:               db,
		approvalService:  approvalService,
		blacklistService: auth.NewBlacklistService(db),
		validator:        validation.NewValidator(),
	}
}

// UpdateUserRequest represents an admin edit of a user record
type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	Role     *string `json:"role" validate:"omitempty,oneof=student tutor admin"`
	Status   *string `json:"status" validate:"omitempty,oneof=pending active blocked"`
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.db.Model(&model.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}

	var users []model.User
	if err := query.
		Preload("StudentProfile").
		Preload("TutorProfile").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch users")
	}

	meta := response.CalculatePagination(page, limit, total)
	return response.Paginated(c, users, meta)
}

// GetUser handles GET /api/v1/admin/users/:id
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	var user model.User
	if err := h.db.
		Preload("StudentProfile.Subjects.Subject").
		Preload("TutorProfile.Subjects.Subject").
		First(&user, uint(userID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	return response.Success(c, user)
}

// UpdateUser handles PATCH /api/v1/admin/users/:id
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var user model.User
	if err := h.db.First(&user, uint(userID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = validation.SanitizeString(*req.FullName)
	}
	if req.Phone != nil {
		updates["phone"] = validation.SanitizeString(*req.Phone)
	}
	if req.Role != nil {
		updates["role"] = model.UserRole(*req.Role)
	}
	if req.Status != nil {
		updates["status"] = model.UserStatus(*req.Status)
	}
	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if err := h.db.Model(&user).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update user")
	}

	// Blocking a user or changing their role invalidates outstanding
	// tokens.
	if (req.Status != nil && model.UserStatus(*req.Status) == model.StatusBlocked) || req.Role != nil {
		if err := h.blacklistService.RevokeAllUserTokens(c.Context(), user.ID); err != nil {
			return response.InternalServerError(c, "Failed to revoke user tokens")
		}
	}

	return response.SuccessWithMessage(c, "User updated successfully", user)
}

// DeleteUser handles DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	adminUser, ok := middleware.GetUser(c)
	if ok && adminUser.ID == uint(userID) {
		return response.BadRequest(c, "Admins cannot delete their own account")
	}

	result := h.db.Delete(&model.User{}, uint(userID))
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete user")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "User not found")
	}

	return response.NoContent(c)
}

// ListPendingApprovals handles GET /api/v1/admin/approvals
func (h *AdminHandler) ListPendingApprovals(c *fiber.Ctx) error {
	links, err := h.approvalService.ListPendingApprovals(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch pending approvals")
	}

	return response.Success(c, links)
}

// ApproveTutorSubject handles POST /api/v1/admin/tutors/:tutorId/subjects/:subjectId/approve
func (h *AdminHandler) ApproveTutorSubject(c *fiber.Ctx) error {
	tutorID, err := strconv.ParseUint(c.Params("tutorId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid tutor id")
	}
	subjectID, err := strconv.ParseUint(c.Params("subjectId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject id")
	}

	link, err := h.approvalService.ApproveSubject(c.Context(), true, uint(tutorID), uint(subjectID))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.SuccessWithMessage(c, "Tutor approved for subject", link)
}

// ListAuditLogs handles GET /api/v1/admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := h.db.Model(&model.AdminAuditLog{})
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count audit logs")
	}

	var logs []model.AdminAuditLog
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch audit logs")
	}

	meta := response.CalculatePagination(page, limit, total)
	return response.Paginated(c, logs, meta)
}
