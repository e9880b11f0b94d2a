package tutor

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/studentportal/portal-api/handlers"
	"github.com/studentportal/portal-api/services"
	"github.com/studentportal/portal-api/utils/middleware"
	"github.com/studentportal/portal-api/utils/pdfvalidation"
	"github.com/studentportal/portal-api/utils/response"
	"github.com/studentportal/portal-api/utils/validation"
)

// MaterialHandler handles tutor study-material uploads
type MaterialHandler struct {
	profileService  *services.ProfileService
	materialService *services.MaterialService
}

// NewMaterialHandler creates a new material handler
func NewMaterialHandler(profileService *services.ProfileService, materialService *services.MaterialService) *MaterialHandler {
	return &MaterialHandler{
		profileService:  profileService,
		materialService: materialService,
	}
}

// Upload handles POST /api/v1/tutors/me/subjects/:subjectId/materials.
// Multipart form: file (PDF), title, description.
func (h *MaterialHandler) Upload(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	subjectID, err := strconv.ParseUint(c.Params("subjectId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject id")
	}

	title := validation.SanitizeString(c.FormValue("title"))
	if title == "" {
		return response.BadRequest(c, "title is required")
	}
	description := validation.SanitizeString(c.FormValue("description"))

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "file is required")
	}

	result, content, err := pdfvalidation.ValidatePDFFile(file, pdfvalidation.MaterialLimits)
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	if !result.Valid {
		return response.BadRequest(c, result.Error)
	}

	tutor, err := h.profileService.GetTutorByUserID(c.Context(), userID)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	material, err := h.materialService.UploadMaterial(c.Context(), tutor.ID, uint(subjectID), title, description, file.Filename, content)
	if err != nil {
		if err == services.ErrStorageUnavailable {
			return response.Error(c, fiber.StatusServiceUnavailable, err.Error(), "STORAGE_UNAVAILABLE")
		}
		return handlers.MapServiceError(c, err)
	}

	return response.Created(c, material)
}

// ListBySubject handles GET /api/v1/subjects/:subjectId/materials
func (h *MaterialHandler) ListBySubject(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("subjectId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject id")
	}

	materials, err := h.materialService.ListMaterialsBySubject(c.Context(), uint(subjectID))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch materials")
	}

	return response.Success(c, materials)
}

// Delete handles DELETE /api/v1/tutors/me/materials/:id
func (h *MaterialHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	materialID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid material id")
	}

	tutor, err := h.profileService.GetTutorByUserID(c.Context(), userID)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	if err := h.materialService.DeleteMaterial(c.Context(), tutor.ID, uint(materialID)); err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.NoContent(c)
}
